// Package domain contains the inventory lot model and the stock movement
// journal.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Lot is a batch of stock for one product. Quantity may go negative:
// oversell is recorded as valid arithmetic and surfaces in the stock
// recalculation rather than being rejected at the counter.
type Lot struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenantId"`
	ProductID  snowflake.ID `gorm:"column:product_id;not null;uniqueIndex:idx_lots_product_number,priority:1" json:"productId"`
	LotNumber  string       `gorm:"column:lot_number;type:text;not null;uniqueIndex:idx_lots_product_number,priority:2" json:"lotNumber"`
	Quantity   int          `gorm:"not null" json:"quantity"`
	ExpiryDate *time.Time   `gorm:"column:expiry_date" json:"expiryDate,omitempty"`
	CostPrice  float64      `gorm:"column:cost_price;not null" json:"costPrice"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Lot) TableName() string { return "stock_lots" }

type MovementType string

const (
	MovementIn     MovementType = "ENTRADA"
	MovementOut    MovementType = "SAIDA"
	MovementSale   MovementType = "VENDA"
	MovementAdjust MovementType = "AJUSTE"
)

// Movement is an append-only journal entry for every stock mutation.
type Movement struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenantId"`
	ProductID snowflake.ID `gorm:"column:product_id;not null;index" json:"productId"`
	LotID     snowflake.ID `gorm:"column:lot_id" json:"lotId,omitempty"`
	UserID    snowflake.ID `gorm:"column:user_id" json:"userId,omitempty"`
	Type      MovementType `gorm:"type:text;not null" json:"type"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	Note      string       `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName sets the database table name.
func (Movement) TableName() string { return "stock_movements" }
