package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// StockIn registers a new lot and raises the product's current stock.
	StockIn(ctx context.Context, tenantID snowflake.ID, req StockInRequest) (*Lot, error)
	// StockOut removes quantity from one lot and lowers the product's
	// current stock, journaling the movement.
	StockOut(ctx context.Context, tenantID snowflake.ID, req StockOutRequest) (*Lot, error)
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Lot, error)
	ListByProduct(ctx context.Context, tenantID, productID snowflake.ID) ([]*Lot, error)
	ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]*Lot, error)
	// Delete removes the lot and deducts its remaining quantity from the
	// product's current stock.
	Delete(ctx context.Context, tenantID, id snowflake.ID, userID snowflake.ID) error
	ListMovements(ctx context.Context, tenantID snowflake.ID, limit int) ([]*Movement, error)
}

type StockInRequest struct {
	ProductID  snowflake.ID `json:"productId"`
	LotNumber  string       `json:"lotNumber"`
	Quantity   int          `json:"quantity"`
	ExpiryDate *time.Time   `json:"expiryDate"`
	CostPrice  float64      `json:"costPrice"`
	Note       string       `json:"note"`
	UserID     snowflake.ID `json:"-"`
}

type StockOutRequest struct {
	LotID    snowflake.ID `json:"lotId"`
	Quantity int          `json:"quantity"`
	Note     string       `json:"note"`
	UserID   snowflake.ID `json:"-"`
}
