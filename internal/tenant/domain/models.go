// Package domain contains the tenant (empresa) model and its subscription
// lifecycle types.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the tenant subscription lifecycle state.
type Status string

const (
	StatusPendente  Status = "PENDENTE"
	StatusEmTeste   Status = "EM_TESTE"
	StatusAtivo     Status = "ATIVO"
	StatusPausado   Status = "PAUSADO"
	StatusCancelado Status = "CANCELADO"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPendente, StatusEmTeste, StatusAtivo, StatusPausado, StatusCancelado:
		return true
	default:
		return false
	}
}

// Blocked reports whether the status gates access to the application.
func (s Status) Blocked() bool {
	return s == StatusPausado || s == StatusCancelado
}

// Tenant is a store account, the unit of data isolation.
type Tenant struct {
	ID                     snowflake.ID      `gorm:"primaryKey"`
	Name                   string            `gorm:"type:text;not null"`
	TaxID                  string            `gorm:"column:tax_id;type:text;not null;uniqueIndex"`
	Email                  string            `gorm:"type:text;not null"`
	Phone                  string            `gorm:"type:text"`
	Status                 Status            `gorm:"type:text;not null;index"`
	PlanDueDate            *time.Time        `gorm:"column:plan_due_date"`
	TemporaryUnlockUntil   *time.Time        `gorm:"column:temporary_unlock_until"`
	LastUnlockAt           *time.Time        `gorm:"column:last_unlock_at"`
	ExternalCustomerID     string            `gorm:"column:external_customer_id;type:text"`
	ExternalSubscriptionID string            `gorm:"column:external_subscription_id;type:text"`
	CancelReason           string            `gorm:"column:cancel_reason;type:text"`
	Metadata               datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt              time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt              time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
