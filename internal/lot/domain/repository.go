package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lot *Lot) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Lot, error)
	// ListByProduct returns lots ordered for FIFO depletion: nearest
	// expiry first, null expiry last.
	ListByProduct(ctx context.Context, db *gorm.DB, tenantID, productID snowflake.ID) ([]*Lot, error)
	ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Lot, error)
	Update(ctx context.Context, db *gorm.DB, lot *Lot) error
	// AddQuantity shifts a lot's quantity by delta, which may be negative.
	AddQuantity(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, delta int) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	InsertMovement(ctx context.Context, db *gorm.DB, movement *Movement) error
	ListMovements(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]*Movement, error)
}
