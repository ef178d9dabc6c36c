// Package domain contains the product catalog model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product is a catalog entry. CurrentStock is denormalized from the lot
// quantities; stock recalculation heals any drift.
type Product struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"column:tenant_id;not null;index;uniqueIndex:idx_products_tenant_sku,priority:1" json:"tenantId"`
	SKU          string       `gorm:"column:sku;type:text;not null;uniqueIndex:idx_products_tenant_sku,priority:2" json:"sku"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
	Category     string       `gorm:"type:text" json:"category,omitempty"`
	SalePrice    float64      `gorm:"column:sale_price;not null" json:"salePrice"`
	CostPrice    float64      `gorm:"column:cost_price;not null" json:"costPrice"`
	CurrentStock int          `gorm:"column:current_stock;not null;default:0" json:"currentStock"`
	MinStock     int          `gorm:"column:min_stock;not null;default:0" json:"minStock"`
	ImageKey     string       `gorm:"column:image_key;type:text" json:"imageKey,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// LowStock reports whether the product fell to or under its minimum.
func (p *Product) LowStock() bool { return p.CurrentStock <= p.MinStock }
