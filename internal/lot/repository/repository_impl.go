package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/varejotech/balcao/internal/lot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lot *domain.Lot) error {
	return db.WithContext(ctx).Create(lot).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Lot, error) {
	var lot domain.Lot
	err := db.WithContext(ctx).
		First(&lot, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (r *repo) ListByProduct(ctx context.Context, db *gorm.DB, tenantID, productID snowflake.ID) ([]*domain.Lot, error) {
	var lots []*domain.Lot
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("expiry_date IS NULL, expiry_date asc, id asc").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *repo) ListByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Lot, error) {
	var lots []*domain.Lot
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("product_id asc, expiry_date IS NULL, expiry_date asc, id asc").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, lot *domain.Lot) error {
	return db.WithContext(ctx).Save(lot).Error
}

func (r *repo) AddQuantity(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, delta int) error {
	return db.WithContext(ctx).
		Model(&domain.Lot{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Delete(&domain.Lot{}, "tenant_id = ? AND id = ?", tenantID, id).Error
}

func (r *repo) InsertMovement(ctx context.Context, db *gorm.DB, movement *domain.Movement) error {
	return db.WithContext(ctx).Create(movement).Error
}

func (r *repo) ListMovements(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, limit int) ([]*domain.Movement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []*domain.Movement
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
