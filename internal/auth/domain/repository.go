package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*User, error)
	UpdatePassword(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string, mustChange bool) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
