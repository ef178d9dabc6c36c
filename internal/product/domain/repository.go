package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search   string
	Category string
	LowStock bool
	pagination.Pagination
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Product, error)
	FindBySKU(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, sku string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]*Product, *pagination.PageInfo, error)
	ListAll(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	// AddStock shifts current_stock by delta, which may be negative.
	AddStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, delta int) error
	SetStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, quantity int) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
}
