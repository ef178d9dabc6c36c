package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/product/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
	"github.com/varejotech/balcao/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("product.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, tenantID snowflake.ID, req domain.UpsertRequest) (*domain.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	product := &domain.Product{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		SalePrice:   req.SalePrice,
		CostPrice:   req.CostPrice,
		MinStock:    req.MinStock,
		ImageKey:    req.ImageKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, s.db, product); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSKUExists
		}
		return nil, err
	}
	return product, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id snowflake.ID, req domain.UpsertRequest) (*domain.Product, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.SalePrice = req.SalePrice
	product.CostPrice = req.CostPrice
	product.MinStock = req.MinStock
	if req.ImageKey != "" {
		product.ImageKey = req.ImageKey
	}
	product.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, product); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSKUExists
		}
		return nil, err
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.Product, *pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, tenantID, filter)
}

func (s *Service) ListAll(ctx context.Context, tenantID snowflake.ID) ([]*domain.Product, error) {
	return s.repo.ListAll(ctx, s.db, tenantID)
}

func (s *Service) Delete(ctx context.Context, tenantID, id snowflake.ID) error {
	product, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, tenantID, id)
}

func validate(req *domain.UpsertRequest) error {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	if req.SKU == "" || req.Name == "" {
		return domain.ErrInvalidRequest
	}
	if req.SalePrice < 0 || req.CostPrice < 0 || req.MinStock < 0 {
		return domain.ErrInvalidRequest
	}
	return nil
}
