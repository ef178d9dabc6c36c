// Package domain contains core types for authentication and team accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/tenantctx"
)

// User represents a system user account. TenantID is zero only for the
// cross-tenant master operator.
type User struct {
	ID                 snowflake.ID   `gorm:"primaryKey"`
	TenantID           snowflake.ID   `gorm:"column:tenant_id;index"`
	Name               string         `gorm:"type:text;not null"`
	Email              string         `gorm:"type:text;not null;uniqueIndex"`
	Role               tenantctx.Role `gorm:"type:text;not null"`
	PasswordHash       string         `gorm:"type:text;not null"`
	MustChangePassword bool           `gorm:"column:must_change_password;not null;default:false"`
	CreatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
