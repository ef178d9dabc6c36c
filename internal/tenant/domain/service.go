package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Signup provisions a tenant, its admin account and the external
	// billing records in one transaction. A provider failure aborts the
	// whole signup; no local rows survive.
	Signup(ctx context.Context, req SignupRequest) (*SignupResult, error)
	Get(ctx context.Context, id snowflake.ID) (*Tenant, error)
	GetByTaxID(ctx context.Context, taxID string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)

	// OverdueSweep pauses ATIVO tenants whose due date passed the grace
	// period. Idempotent: re-running over paused tenants is a no-op.
	OverdueSweep(ctx context.Context) (*SweepResult, error)
	// ReconcileAll maps each tenant's provider subscription status onto
	// the local lifecycle. Individual tenant failures are reported, not
	// fatal.
	ReconcileAll(ctx context.Context) (*ReconcileResult, error)
	// Cancel cancels the provider subscription first; the local status
	// only changes after the provider call succeeds.
	Cancel(ctx context.Context, id snowflake.ID, reason string) error
	// TemporaryUnlock grants a 24h access window on a paused tenant,
	// rate-limited by the unlock cooldown.
	TemporaryUnlock(ctx context.Context, id snowflake.ID) (*Tenant, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type SignupRequest struct {
	CompanyName string
	TaxID       string
	Email       string
	Phone       string
	AdminName   string
	Password    string
}

type SignupResult struct {
	Tenant      *Tenant
	AdminUserID snowflake.ID
}

type SweepDetail struct {
	TenantID   snowflake.ID `json:"tenantId"`
	Name       string       `json:"name"`
	DueDate    time.Time    `json:"dueDate"`
	BlockedAt  time.Time    `json:"blockedAt"`
	AdminEmail string       `json:"adminEmail"`
}

type SweepResult struct {
	BlockedCount int           `json:"blockedCount"`
	Details      []SweepDetail `json:"details"`
}

type ReconcileOutcome struct {
	TenantID snowflake.ID `json:"tenantId"`
	Name     string       `json:"name"`
	From     Status       `json:"from"`
	To       Status       `json:"to"`
	Changed  bool         `json:"changed"`
	Error    string       `json:"error,omitempty"`
}

type ReconcileResult struct {
	Outcomes []ReconcileOutcome `json:"outcomes"`
}
