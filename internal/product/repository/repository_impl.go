package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/product/domain"
	"github.com/varejotech/balcao/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindBySKU(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, sku string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		First(&product, "tenant_id = ? AND sku = ?", tenantID, strings.TrimSpace(sku)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.Product, *pagination.PageInfo, error) {
	limit := filter.PageSize
	if limit <= 0 {
		limit = 50
	}

	query := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id asc").
		Limit(limit + 1)

	if filter.Search != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(sku) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		query = query.Where("current_stock <= min_stock")
	}
	if filter.PageToken != "" {
		cursor, err := pagination.DecodeCursor(filter.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if cursor.ID != "" {
			afterID, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				return nil, nil, err
			}
			query = query.Where("id > ?", afterID)
		}
	}

	var products []*domain.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(products, limit, func(p *domain.Product) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: p.ID.String()})
		return token
	})
	if len(products) > limit {
		products = products[:limit]
	}
	return products, pageInfo, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Product, error) {
	var products []*domain.Product
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name asc, id asc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) AddStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, delta int) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("current_stock", gorm.Expr("current_stock + ?", delta)).Error
}

func (r *repo) SetStock(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, quantity int) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("current_stock", quantity).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Delete(&domain.Product{}, "tenant_id = ? AND id = ?", tenantID, id).Error
}
