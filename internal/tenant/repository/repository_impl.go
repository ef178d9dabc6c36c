package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Create(tenant).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) FindByTaxID(ctx context.Context, db *gorm.DB, taxID string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).First(&tenant, "tax_id = ?", strings.TrimSpace(taxID)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	err := db.WithContext(ctx).
		Order("created_at asc, id asc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) ListOverdue(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusAtivo).
		Where("plan_due_date IS NOT NULL AND plan_due_date < ?", cutoff).
		Order("plan_due_date asc, id asc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) ListReconcilable(ctx context.Context, db *gorm.DB) ([]*domain.Tenant, error) {
	var tenants []*domain.Tenant
	err := db.WithContext(ctx).
		Where("status <> ?", domain.StatusCancelado).
		Where("external_subscription_id <> ''").
		Order("id asc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Save(tenant).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	return db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the tenant row and everything it owns. Ordered child
// first so foreign keys hold on engines that enforce them.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			"DELETE FROM sale_items WHERE sale_id IN (SELECT id FROM sales WHERE tenant_id = ?)",
			"DELETE FROM sales WHERE tenant_id = ?",
			"DELETE FROM stock_movements WHERE tenant_id = ?",
			"DELETE FROM stock_lots WHERE tenant_id = ?",
			"DELETE FROM products WHERE tenant_id = ?",
			"DELETE FROM users WHERE tenant_id = ?",
			"DELETE FROM tenants WHERE id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
