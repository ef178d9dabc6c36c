// Package domain contains the sale records. Sales are immutable once
// created; corrections happen through new compensating entries, never by
// editing a closed sale.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "DINHEIRO"
	PaymentCard   PaymentMethod = "CARTAO"
	PaymentPix    PaymentMethod = "PIX"
	PaymentOnHold PaymentMethod = "FIADO"
)

type Sale struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID snowflake.ID `gorm:"column:tenant_id;not null;index;uniqueIndex:idx_sales_tenant_clientref,priority:1" json:"tenantId"`
	UserID   snowflake.ID `gorm:"column:user_id;not null" json:"userId"`
	// ClientReference deduplicates offline replays: the client generates
	// it once per sale and retries carry the same value. Nil for sales
	// entered directly at the counter, so the unique index never collides
	// on the empty value.
	ClientReference *string       `gorm:"column:client_reference;type:text;uniqueIndex:idx_sales_tenant_clientref,priority:2" json:"clientReference,omitempty"`
	PaymentMethod   PaymentMethod `gorm:"column:payment_method;type:text;not null" json:"paymentMethod"`
	Discount        float64       `gorm:"not null;default:0" json:"discount"`
	Total           float64       `gorm:"not null" json:"total"`
	Items           []SaleItem    `gorm:"foreignKey:SaleID" json:"items"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"createdAt"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// SaleItem snapshots the product's cost at sale time so profit reports
// survive later catalog price edits.
type SaleItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SaleID    snowflake.ID `gorm:"column:sale_id;not null;index" json:"saleId"`
	ProductID snowflake.ID `gorm:"column:product_id;not null;index" json:"productId"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice float64      `gorm:"column:unit_price;not null" json:"unitPrice"`
	UnitCost  float64      `gorm:"column:unit_cost;not null" json:"unitCost"`
	Discount  float64      `gorm:"not null;default:0" json:"discount"`
	Subtotal  float64      `gorm:"not null" json:"subtotal"`
}

// TableName sets the database table name.
func (SaleItem) TableName() string { return "sale_items" }
