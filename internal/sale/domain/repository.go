package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	From *time.Time
	To   *time.Time
	pagination.Pagination
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Sale, error)
	FindByClientReference(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ref string) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter) ([]*Sale, *pagination.PageInfo, error)
}
