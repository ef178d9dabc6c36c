package report

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	productdomain "github.com/varejotech/balcao/internal/product/domain"
	saledomain "github.com/varejotech/balcao/internal/sale/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

var baseTime = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *Service
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
	err = dbConn.AutoMigrate(&productdomain.Product{}, &saledomain.Sale{}, &saledomain.SaleItem{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{DB: dbConn, Log: zap.NewNop()})
	return &testEnv{svc: svc, db: dbConn, node: node, tenantID: node.Generate()}
}

func (e *testEnv) seedProduct(t *testing.T, sku, name string, stock, minStock int) snowflake.ID {
	t.Helper()

	product := &productdomain.Product{
		ID:           e.node.Generate(),
		TenantID:     e.tenantID,
		SKU:          sku,
		Name:         name,
		CurrentStock: stock,
		MinStock:     minStock,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product.ID
}

func (e *testEnv) seedSale(t *testing.T, at time.Time, productID snowflake.ID, qty int, unitPrice, unitCost float64) {
	t.Helper()

	subtotal := float64(qty) * unitPrice
	sale := &saledomain.Sale{
		ID:            e.node.Generate(),
		TenantID:      e.tenantID,
		UserID:        1,
		PaymentMethod: saledomain.PaymentCash,
		Total:         subtotal,
		CreatedAt:     at,
		Items: []saledomain.SaleItem{{
			ID:        e.node.Generate(),
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: unitPrice,
			UnitCost:  unitCost,
			Subtotal:  subtotal,
		}},
	}
	if err := e.db.Create(sale).Error; err != nil {
		t.Fatalf("failed to seed sale: %v", err)
	}
}

func TestSummaryComputesRevenueAndProfit(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", "Cafe 500g", 10, 2)

	// Two sales inside the period, one before it.
	env.seedSale(t, baseTime, productID, 2, 15, 8)
	env.seedSale(t, baseTime.Add(2*time.Hour), productID, 1, 15, 8)
	env.seedSale(t, baseTime.AddDate(0, 0, -10), productID, 5, 15, 8)

	from := baseTime.AddDate(0, 0, -1)
	to := baseTime.AddDate(0, 0, 1)
	summary, err := env.svc.Summary(context.Background(), env.tenantID, from, to)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.SalesCount != 2 {
		t.Fatalf("expected 2 sales, got %d", summary.SalesCount)
	}
	if summary.Revenue != 45 {
		t.Fatalf("expected revenue 45, got %v", summary.Revenue)
	}
	// (30 - 16) + (15 - 8)
	if summary.Profit != 21 {
		t.Fatalf("expected profit 21, got %v", summary.Profit)
	}
	if summary.AverageTicket != 22.5 {
		t.Fatalf("expected average ticket 22.5, got %v", summary.AverageTicket)
	}
}

func TestSummaryEmptyPeriod(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.svc.Summary(context.Background(), env.tenantID, baseTime, baseTime.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.SalesCount != 0 || summary.Revenue != 0 || summary.AverageTicket != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestDailySeriesGroupsByDay(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "CAFE-500", "Cafe 500g", 10, 2)

	env.seedSale(t, baseTime, productID, 1, 10, 5)
	env.seedSale(t, baseTime.Add(3*time.Hour), productID, 1, 20, 5)
	env.seedSale(t, baseTime.AddDate(0, 0, 1), productID, 1, 30, 5)

	points, err := env.svc.DailySeries(context.Background(), env.tenantID, baseTime.AddDate(0, 0, -1), baseTime.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("daily series failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 days, got %d", len(points))
	}
	if points[0].Count != 2 || points[0].Revenue != 30 {
		t.Fatalf("expected first day with 2 sales and revenue 30, got %+v", points[0])
	}
	if points[1].Count != 1 || points[1].Revenue != 30 {
		t.Fatalf("expected second day with 1 sale and revenue 30, got %+v", points[1])
	}
}

func TestTopProductsOrdersByQuantity(t *testing.T) {
	env := newTestEnv(t)
	coffee := env.seedProduct(t, "CAFE-500", "Cafe 500g", 10, 2)
	sugar := env.seedProduct(t, "ACUCAR-1KG", "Acucar 1kg", 10, 2)

	env.seedSale(t, baseTime, coffee, 2, 15, 8)
	env.seedSale(t, baseTime, sugar, 7, 5, 3)

	rows, err := env.svc.TopProducts(context.Background(), env.tenantID, baseTime.AddDate(0, 0, -1), baseTime.AddDate(0, 0, 1), 10)
	if err != nil {
		t.Fatalf("top products failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ProductID != sugar || rows[0].Quantity != 7 {
		t.Fatalf("expected sugar first with quantity 7, got %+v", rows[0])
	}
	if rows[1].ProductID != coffee {
		t.Fatalf("expected coffee second, got %+v", rows[1])
	}
}

func TestLowStockListsAtOrUnderMinimum(t *testing.T) {
	env := newTestEnv(t)
	low := env.seedProduct(t, "BAIXO-1", "Quase acabando", 2, 5)
	atMin := env.seedProduct(t, "LIMITE-1", "No limite", 5, 5)
	env.seedProduct(t, "CHEIO-1", "Sobrando", 50, 5)

	products, err := env.svc.LowStock(context.Background(), env.tenantID)
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 low stock products, got %d", len(products))
	}
	if products[0].ID != low || products[1].ID != atMin {
		t.Fatalf("expected low stock ordering, got %+v", products)
	}
}
