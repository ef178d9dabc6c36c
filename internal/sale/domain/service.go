package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/pkg/db/pagination"
)

type Service interface {
	// Create closes a sale: inserts the sale and its items, drains lot
	// quantities nearest-expiry first and lowers the products' current
	// stock, all in one transaction. Replays carrying a known
	// clientReference return the original sale unchanged.
	Create(ctx context.Context, tenantID snowflake.ID, req CreateRequest) (*Sale, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, tenantID snowflake.ID, filter ListFilter) ([]*Sale, *pagination.PageInfo, error)
}

type CreateRequest struct {
	ClientReference string        `json:"clientReference"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	Discount        float64       `json:"discount"`
	Items           []ItemRequest `json:"items"`
	UserID          snowflake.ID  `json:"-"`
}

type ItemRequest struct {
	ProductID snowflake.ID `json:"productId"`
	Quantity  int          `json:"quantity"`
	UnitPrice float64      `json:"unitPrice"`
	Discount  float64      `json:"discount"`
}
