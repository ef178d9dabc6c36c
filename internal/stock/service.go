// Package stock holds the reconciliation that heals drift between the
// denormalized product stock counter and the lot quantities.
package stock

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/observability/metrics"
)

type Result struct {
	Scanned   int `json:"scanned"`
	Corrected int `json:"corrected"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Metrics
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func New(p Params) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("stock.service"),
		metrics: p.Metrics,
	}
}

var Module = fx.Module("stock",
	fx.Provide(New),
)

type productStock struct {
	ID           snowflake.ID
	CurrentStock int
	RealStock    int
}

// Recalculate compares every product's current_stock against the sum of
// its lot quantities and rewrites the differing ones. All corrections for
// the tenant land in one transaction so a half-corrected stock view is
// never observable; with no intervening writes a second run corrects
// nothing.
func (s *Service) Recalculate(ctx context.Context, tenantID snowflake.ID) (*Result, error) {
	result := &Result{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []productStock
		err := tx.Raw(`
			SELECT p.id, p.current_stock, COALESCE(SUM(l.quantity), 0) AS real_stock
			FROM products p
			LEFT JOIN stock_lots l ON l.product_id = p.id
			WHERE p.tenant_id = ?
			GROUP BY p.id, p.current_stock`, tenantID).Scan(&rows).Error
		if err != nil {
			return err
		}

		result.Scanned = len(rows)
		for _, row := range rows {
			if row.CurrentStock == row.RealStock {
				continue
			}
			err := tx.Exec(
				"UPDATE products SET current_stock = ? WHERE tenant_id = ? AND id = ?",
				row.RealStock, tenantID, row.ID,
			).Error
			if err != nil {
				return err
			}
			result.Corrected++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddStockCorrections(result.Corrected)
	s.log.Info("stock recalculated",
		zap.Int64("tenant_id", int64(tenantID)),
		zap.Int("scanned", result.Scanned),
		zap.Int("corrected", result.Corrected),
	)
	return result, nil
}
