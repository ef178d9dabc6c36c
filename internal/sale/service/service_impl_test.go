package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/clock"
	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	lotrepository "github.com/varejotech/balcao/internal/lot/repository"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	productrepository "github.com/varejotech/balcao/internal/product/repository"
	"github.com/varejotech/balcao/internal/sale/domain"
	"github.com/varejotech/balcao/internal/sale/repository"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

var baseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	tenantID snowflake.ID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbConn, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&productdomain.Product{},
		&lotdomain.Lot{},
		&lotdomain.Movement{},
		&domain.Sale{},
		&domain.SaleItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(baseTime),
		Repo:        repository.Provide(),
		ProductRepo: productrepository.Provide(),
		LotRepo:     lotrepository.Provide(),
	})
	return &testEnv{svc: svc, db: dbConn, node: node, tenantID: node.Generate()}
}

func (e *testEnv) seedProduct(t *testing.T, sku string, costPrice float64, stock int) snowflake.ID {
	t.Helper()

	product := &productdomain.Product{
		ID:           e.node.Generate(),
		TenantID:     e.tenantID,
		SKU:          sku,
		Name:         "Produto " + sku,
		CostPrice:    costPrice,
		CurrentStock: stock,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product.ID
}

func (e *testEnv) seedLot(t *testing.T, productID snowflake.ID, number string, qty int, expiry *time.Time) snowflake.ID {
	t.Helper()

	lot := &lotdomain.Lot{
		ID:         e.node.Generate(),
		TenantID:   e.tenantID,
		ProductID:  productID,
		LotNumber:  number,
		Quantity:   qty,
		ExpiryDate: expiry,
	}
	if err := e.db.Create(lot).Error; err != nil {
		t.Fatalf("failed to seed lot: %v", err)
	}
	return lot.ID
}

func (e *testEnv) lotQuantity(t *testing.T, lotID snowflake.ID) int {
	t.Helper()

	var lot lotdomain.Lot
	if err := e.db.First(&lot, "id = ?", lotID).Error; err != nil {
		t.Fatalf("failed to load lot: %v", err)
	}
	return lot.Quantity
}

func (e *testEnv) productStock(t *testing.T, productID snowflake.ID) int {
	t.Helper()

	var product productdomain.Product
	if err := e.db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return product.CurrentStock
}

func TestCreateDrainsNearestExpiryFirst(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "LEITE-1L", 3.50, 30)

	soon := baseTime.AddDate(0, 0, 5)
	later := baseTime.AddDate(0, 1, 0)
	expiring := env.seedLot(t, productID, "L-SOON", 10, &soon)
	fresh := env.seedLot(t, productID, "L-LATER", 20, &later)

	sale, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 12, UnitPrice: 5}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sale.Total != 60 {
		t.Fatalf("expected total 60, got %v", sale.Total)
	}

	// The expiring lot is emptied first, the rest comes off the fresh one.
	if got := env.lotQuantity(t, expiring); got != 0 {
		t.Fatalf("expected expiring lot at 0, got %d", got)
	}
	if got := env.lotQuantity(t, fresh); got != 18 {
		t.Fatalf("expected fresh lot at 18, got %d", got)
	}
	if got := env.productStock(t, productID); got != 18 {
		t.Fatalf("expected product stock 18, got %d", got)
	}
}

func TestCreateOversellGoesNegativeOnLastLot(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "LEITE-1L", 3.50, 5)
	lotID := env.seedLot(t, productID, "L1", 5, nil)

	_, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 8, UnitPrice: 5}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if got := env.lotQuantity(t, lotID); got != -3 {
		t.Fatalf("expected last lot at -3, got %d", got)
	}
	if got := env.productStock(t, productID); got != -3 {
		t.Fatalf("expected product stock -3, got %d", got)
	}
}

func TestCreateWithoutLotsOnlyMovesCounter(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SAL-1KG", 1.20, 10)

	_, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 4, UnitPrice: 2}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := env.productStock(t, productID); got != 6 {
		t.Fatalf("expected product stock 6, got %d", got)
	}
}

func TestCreateReplayReturnsOriginal(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", 8, 20)
	env.seedLot(t, productID, "L1", 20, nil)

	req := domain.CreateRequest{
		ClientReference: "pos-7-0001",
		Items:           []domain.ItemRequest{{ProductID: productID, Quantity: 3, UnitPrice: 15}},
	}

	first, err := env.svc.Create(context.Background(), env.tenantID, req)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	replay, err := env.svc.Create(context.Background(), env.tenantID, req)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.ID != first.ID {
		t.Fatalf("expected replay to return sale %d, got %d", first.ID, replay.ID)
	}

	// Stock moved once, not twice.
	if got := env.productStock(t, productID); got != 17 {
		t.Fatalf("expected product stock 17, got %d", got)
	}
	var count int64
	env.db.Model(&domain.Sale{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 sale, got %d", count)
	}
}

func TestCreateSnapshotsUnitCost(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", 8.25, 20)

	sale, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 2, UnitPrice: 15}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sale.Items[0].UnitCost != 8.25 {
		t.Fatalf("expected unit cost snapshot 8.25, got %v", sale.Items[0].UnitCost)
	}

	// A later catalog edit leaves the snapshot untouched.
	env.db.Model(&productdomain.Product{}).Where("id = ?", productID).Update("cost_price", 9.99)
	stored, err := env.svc.Get(context.Background(), env.tenantID, sale.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Items[0].UnitCost != 8.25 {
		t.Fatalf("expected stored unit cost 8.25, got %v", stored.Items[0].UnitCost)
	}
}

func TestCreateAppliesDiscounts(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", 8, 20)

	sale, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Discount: 5,
		Items: []domain.ItemRequest{
			{ProductID: productID, Quantity: 2, UnitPrice: 15, Discount: 2},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// 2*15 - 2 item discount = 28, minus 5 sale discount.
	if sale.Items[0].Subtotal != 28 {
		t.Fatalf("expected subtotal 28, got %v", sale.Items[0].Subtotal)
	}
	if sale.Total != 23 {
		t.Fatalf("expected total 23, got %v", sale.Total)
	}
}

func TestCreateRejectsEmptyAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", 8, 20)

	if _, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{}); err != domain.ErrEmptySale {
		t.Fatalf("expected ErrEmptySale, got %v", err)
	}

	_, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 0, UnitPrice: 5}},
	})
	if err != domain.ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreateRecordsSaleMovements(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", 8, 20)
	env.seedLot(t, productID, "L1", 20, nil)

	_, err := env.svc.Create(context.Background(), env.tenantID, domain.CreateRequest{
		Items: []domain.ItemRequest{{ProductID: productID, Quantity: 3, UnitPrice: 15}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var movements []lotdomain.Movement
	if err := env.db.Find(&movements, "tenant_id = ?", env.tenantID).Error; err != nil {
		t.Fatalf("failed to load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].Type != lotdomain.MovementSale || movements[0].Quantity != -3 {
		t.Fatalf("expected VENDA movement of -3, got %s %d", movements[0].Type, movements[0].Quantity)
	}
}
