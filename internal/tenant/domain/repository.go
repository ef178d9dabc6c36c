package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tenant, error)
	FindByTaxID(ctx context.Context, db *gorm.DB, taxID string) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]*Tenant, error)
	// ListOverdue selects ATIVO tenants whose due date is strictly before
	// the cutoff. The predicate carries the sweep's idempotence: paused
	// tenants never match.
	ListOverdue(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]*Tenant, error)
	// ListReconcilable selects non-cancelled tenants holding an external
	// subscription reference.
	ListReconcilable(ctx context.Context, db *gorm.DB) ([]*Tenant, error)
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
	// Delete removes the tenant and all owned records.
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
