// Package report assembles the read-only dashboard KPIs. Everything here
// is straight aggregation SQL over the sale and product tables.
package report

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	productdomain "github.com/varejotech/balcao/internal/product/domain"
)

type Summary struct {
	SalesCount    int     `json:"salesCount"`
	Revenue       float64 `json:"revenue"`
	Profit        float64 `json:"profit"`
	AverageTicket float64 `json:"averageTicket"`
}

type DailyPoint struct {
	Day     string  `json:"day"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type TopProduct struct {
	ProductID snowflake.ID `json:"productId"`
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	Revenue   float64      `json:"revenue"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func New(p Params) *Service {
	return &Service{db: p.DB, log: p.Log.Named("report.service")}
}

var Module = fx.Module("report",
	fx.Provide(New),
)

func (s *Service) Summary(ctx context.Context, tenantID snowflake.ID, from, to time.Time) (*Summary, error) {
	var row struct {
		SalesCount int
		Revenue    float64
		Profit     float64
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT s.id) AS sales_count,
			COALESCE(SUM(s.total), 0) AS revenue,
			COALESCE(SUM(i.subtotal - i.unit_cost * i.quantity), 0) AS profit
		FROM sales s
		LEFT JOIN sale_items i ON i.sale_id = s.id
		WHERE s.tenant_id = ? AND s.created_at >= ? AND s.created_at < ?`,
		tenantID, from, to).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		SalesCount: row.SalesCount,
		Revenue:    row.Revenue,
		Profit:     row.Profit,
	}
	if row.SalesCount > 0 {
		summary.AverageTicket = row.Revenue / float64(row.SalesCount)
	}
	return summary, nil
}

func (s *Service) DailySeries(ctx context.Context, tenantID snowflake.ID, from, to time.Time) ([]DailyPoint, error) {
	var points []DailyPoint
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			date(created_at) AS day,
			COUNT(*) AS count,
			COALESCE(SUM(total), 0) AS revenue
		FROM sales
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day`, tenantID, from, to).Scan(&points).Error
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []DailyPoint{}
	}
	return points, nil
}

func (s *Service) TopProducts(ctx context.Context, tenantID snowflake.ID, from, to time.Time, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []TopProduct
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			i.product_id,
			p.name,
			SUM(i.quantity) AS quantity,
			COALESCE(SUM(i.subtotal), 0) AS revenue
		FROM sale_items i
		JOIN sales s ON s.id = i.sale_id
		JOIN products p ON p.id = i.product_id
		WHERE s.tenant_id = ? AND s.created_at >= ? AND s.created_at < ?
		GROUP BY i.product_id, p.name
		ORDER BY quantity DESC
		LIMIT ?`, tenantID, from, to, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []TopProduct{}
	}
	return rows, nil
}

func (s *Service) LowStock(ctx context.Context, tenantID snowflake.ID) ([]*productdomain.Product, error) {
	var products []*productdomain.Product
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND current_stock <= min_stock", tenantID).
		Order("current_stock asc, name asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
