package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		First(&sale, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) FindByClientReference(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ref string) (*domain.Sale, error) {
	if ref == "" {
		return nil, nil
	}
	var sale domain.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		First(&sale, "tenant_id = ? AND client_reference = ?", tenantID, ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.Sale, *pagination.PageInfo, error) {
	limit := filter.PageSize
	if limit <= 0 {
		limit = 50
	}

	query := db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("id desc").
		Limit(limit + 1)

	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.PageToken != "" {
		cursor, err := pagination.DecodeCursor(filter.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if cursor.ID != "" {
			beforeID, err := snowflake.ParseString(cursor.ID)
			if err != nil {
				return nil, nil, err
			}
			query = query.Where("id < ?", beforeID)
		}
	}

	var sales []*domain.Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(sales, limit, func(s *domain.Sale) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: s.ID.String()})
		return token
	})
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, pageInfo, nil
}
