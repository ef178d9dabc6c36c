package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/clock"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	"github.com/varejotech/balcao/internal/sale/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
	"github.com/varejotech/balcao/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	LotRepo     lotdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
	lotRepo     lotdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("sale.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		lotRepo:     p.LotRepo,
	}
}

func (s *Service) Create(ctx context.Context, tenantID snowflake.ID, req domain.CreateRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptySale
	}
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 || item.UnitPrice < 0 || item.Discount < 0 {
			return nil, domain.ErrInvalidRequest
		}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	req.ClientReference = strings.TrimSpace(req.ClientReference)

	// Offline replays carry the client's reference; a known reference
	// returns the already-recorded sale instead of double-counting.
	if req.ClientReference != "" {
		existing, err := s.repo.FindByClientReference(ctx, s.db, tenantID, req.ClientReference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := s.clock.Now()
	sale := &domain.Sale{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		UserID:        req.UserID,
		PaymentMethod: req.PaymentMethod,
		Discount:      req.Discount,
		CreatedAt:     now,
	}
	if req.ClientReference != "" {
		sale.ClientReference = &req.ClientReference
	}

	var total float64
	for _, item := range req.Items {
		product, err := s.productRepo.FindByID(ctx, s.db, tenantID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, productdomain.ErrNotFound
		}

		subtotal := float64(item.Quantity)*item.UnitPrice - item.Discount
		sale.Items = append(sale.Items, domain.SaleItem{
			ID:        s.genID.Generate(),
			SaleID:    sale.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitCost:  product.CostPrice,
			Discount:  item.Discount,
			Subtotal:  subtotal,
		})
		total += subtotal
	}
	sale.Total = total - req.Discount

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			if err := s.drainLots(ctx, tx, tenantID, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := s.productRepo.AddStock(ctx, tx, tenantID, item.ProductID, -item.Quantity); err != nil {
				return err
			}
			if err := s.lotRepo.InsertMovement(ctx, tx, &lotdomain.Movement{
				ID:        s.genID.Generate(),
				TenantID:  tenantID,
				ProductID: item.ProductID,
				UserID:    req.UserID,
				Type:      lotdomain.MovementSale,
				Quantity:  -item.Quantity,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent replay may have landed the same reference first.
		if req.ClientReference != "" && dbpkg.IsDuplicateKeyErr(err) {
			return s.repo.FindByClientReference(ctx, s.db, tenantID, req.ClientReference)
		}
		return nil, err
	}

	s.log.Info("sale recorded",
		zap.Int64("tenant_id", int64(tenantID)),
		zap.Int64("sale_id", int64(sale.ID)),
		zap.Int("items", len(sale.Items)),
		zap.Float64("total", sale.Total),
	)
	return sale, nil
}

// drainLots consumes quantity from the product's lots nearest expiry
// first. Overflow lands on the last lot, which may go negative; with no
// lots at all only the product counter moves and recalculation heals the
// drift later.
func (s *Service) drainLots(ctx context.Context, tx *gorm.DB, tenantID, productID snowflake.ID, quantity int) error {
	lots, err := s.lotRepo.ListByProduct(ctx, tx, tenantID, productID)
	if err != nil {
		return err
	}
	if len(lots) == 0 {
		return nil
	}

	remaining := quantity
	for i, lot := range lots {
		if remaining <= 0 {
			break
		}
		take := remaining
		if lot.Quantity < take && i < len(lots)-1 {
			take = lot.Quantity
			if take <= 0 {
				continue
			}
		}
		if err := s.lotRepo.AddQuantity(ctx, tx, tenantID, lot.ID, -take); err != nil {
			return err
		}
		remaining -= take
	}
	return nil
}

func (s *Service) Get(ctx context.Context, tenantID, id snowflake.ID) (*domain.Sale, error) {
	sale, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, tenantID snowflake.ID, filter domain.ListFilter) ([]*domain.Sale, *pagination.PageInfo, error) {
	return s.repo.List(ctx, s.db, tenantID, filter)
}
