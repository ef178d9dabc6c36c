package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("lot.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
	}
}

func (s *Service) StockIn(ctx context.Context, tenantID snowflake.ID, req domain.StockInRequest) (*domain.Lot, error) {
	req.LotNumber = strings.TrimSpace(req.LotNumber)
	if req.ProductID == 0 || req.LotNumber == "" || req.Quantity <= 0 || req.CostPrice < 0 {
		return nil, domain.ErrInvalidRequest
	}

	product, err := s.productRepo.FindByID(ctx, s.db, tenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, productdomain.ErrNotFound
	}

	now := s.clock.Now()
	lot := &domain.Lot{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		LotNumber:  req.LotNumber,
		Quantity:   req.Quantity,
		ExpiryDate: req.ExpiryDate,
		CostPrice:  req.CostPrice,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, lot); err != nil {
			if dbpkg.IsDuplicateKeyErr(err) {
				return domain.ErrLotNumberExists
			}
			return err
		}
		if err := s.productRepo.AddStock(ctx, tx, tenantID, req.ProductID, req.Quantity); err != nil {
			return err
		}
		return s.repo.InsertMovement(ctx, tx, &domain.Movement{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			ProductID: req.ProductID,
			LotID:     lot.ID,
			UserID:    req.UserID,
			Type:      domain.MovementIn,
			Quantity:  req.Quantity,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *Service) StockOut(ctx context.Context, tenantID snowflake.ID, req domain.StockOutRequest) (*domain.Lot, error) {
	if req.LotID == 0 || req.Quantity <= 0 {
		return nil, domain.ErrInvalidRequest
	}

	lot, err := s.repo.FindByID(ctx, s.db, tenantID, req.LotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.AddQuantity(ctx, tx, tenantID, lot.ID, -req.Quantity); err != nil {
			return err
		}
		if err := s.productRepo.AddStock(ctx, tx, tenantID, lot.ProductID, -req.Quantity); err != nil {
			return err
		}
		return s.repo.InsertMovement(ctx, tx, &domain.Movement{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			ProductID: lot.ProductID,
			LotID:     lot.ID,
			UserID:    req.UserID,
			Type:      domain.MovementOut,
			Quantity:  -req.Quantity,
			Note:      strings.TrimSpace(req.Note),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	lot.Quantity -= req.Quantity
	return lot, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Lot, error) {
	lot, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

func (s *Service) ListByProduct(ctx context.Context, tenantID, productID snowflake.ID) ([]*domain.Lot, error) {
	return s.repo.ListByProduct(ctx, s.db, tenantID, productID)
}

func (s *Service) ListByTenant(ctx context.Context, tenantID snowflake.ID) ([]*domain.Lot, error) {
	return s.repo.ListByTenant(ctx, s.db, tenantID)
}

func (s *Service) Delete(ctx context.Context, tenantID, id snowflake.ID, userID snowflake.ID) error {
	lot, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return err
	}
	if lot == nil {
		return domain.ErrNotFound
	}

	now := s.clock.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, tenantID, id); err != nil {
			return err
		}
		if lot.Quantity != 0 {
			if err := s.productRepo.AddStock(ctx, tx, tenantID, lot.ProductID, -lot.Quantity); err != nil {
				return err
			}
		}
		return s.repo.InsertMovement(ctx, tx, &domain.Movement{
			ID:        s.genID.Generate(),
			TenantID:  tenantID,
			ProductID: lot.ProductID,
			LotID:     lot.ID,
			UserID:    userID,
			Type:      domain.MovementAdjust,
			Quantity:  -lot.Quantity,
			Note:      "lote removido",
			CreatedAt: now,
		})
	})
}

func (s *Service) ListMovements(ctx context.Context, tenantID snowflake.ID, limit int) ([]*domain.Movement, error) {
	return s.repo.ListMovements(ctx, s.db, tenantID, limit)
}
