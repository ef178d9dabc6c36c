package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, tenantID snowflake.ID, req UpsertRequest) (*Product, error)
	Update(ctx context.Context, tenantID, id snowflake.ID, req UpsertRequest) (*Product, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]*Product, *pagination.PageInfo, error)
	// ListAll returns the tenant's full catalog, used by the offline
	// cache sync which replaces the client cache wholesale.
	ListAll(ctx context.Context, tenantID snowflake.ID) ([]*Product, error)
	Delete(ctx context.Context, tenantID, id snowflake.ID) error
}

type UpsertRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	SalePrice   float64 `json:"salePrice"`
	CostPrice   float64 `json:"costPrice"`
	MinStock    int     `json:"minStock"`
	ImageKey    string  `json:"imageKey"`
}
