package stock

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	lotdomain "github.com/varejotech/balcao/internal/lot/domain"
	productdomain "github.com/varejotech/balcao/internal/product/domain"
	dbpkg "github.com/varejotech/balcao/pkg/db"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dbConn, err := dbpkg.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&productdomain.Product{}, &lotdomain.Lot{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{DB: dbConn, Log: zap.NewNop()})
	return svc, dbConn, node
}

func seedProduct(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID snowflake.ID, sku string, stock int) snowflake.ID {
	t.Helper()

	product := &productdomain.Product{
		ID:           node.Generate(),
		TenantID:     tenantID,
		SKU:          sku,
		Name:         "Produto " + sku,
		CurrentStock: stock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product.ID
}

func seedLot(t *testing.T, db *gorm.DB, node *snowflake.Node, tenantID, productID snowflake.ID, number string, qty int) {
	t.Helper()

	lot := &lotdomain.Lot{
		ID:        node.Generate(),
		TenantID:  tenantID,
		ProductID: productID,
		LotNumber: number,
		Quantity:  qty,
	}
	if err := db.Create(lot).Error; err != nil {
		t.Fatalf("failed to seed lot: %v", err)
	}
}

func currentStock(t *testing.T, db *gorm.DB, productID snowflake.ID) int {
	t.Helper()

	var product productdomain.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return product.CurrentStock
}

func TestRecalculateHealsDrift(t *testing.T) {
	svc, db, node := newTestService(t)
	tenantID := node.Generate()

	drifted := seedProduct(t, db, node, tenantID, "CAFE-500", 99)
	seedLot(t, db, node, tenantID, drifted, "L1", 10)
	seedLot(t, db, node, tenantID, drifted, "L2", 5)

	correct := seedProduct(t, db, node, tenantID, "ACUCAR-1KG", 7)
	seedLot(t, db, node, tenantID, correct, "L1", 7)

	lotless := seedProduct(t, db, node, tenantID, "SAL-1KG", 3)

	result, err := svc.Recalculate(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if result.Scanned != 3 {
		t.Fatalf("expected 3 scanned, got %d", result.Scanned)
	}
	if result.Corrected != 2 {
		t.Fatalf("expected 2 corrected, got %d", result.Corrected)
	}

	if got := currentStock(t, db, drifted); got != 15 {
		t.Fatalf("expected drifted product at 15, got %d", got)
	}
	if got := currentStock(t, db, correct); got != 7 {
		t.Fatalf("expected correct product untouched at 7, got %d", got)
	}
	// No lots means the truth is zero.
	if got := currentStock(t, db, lotless); got != 0 {
		t.Fatalf("expected lotless product at 0, got %d", got)
	}
}

func TestRecalculateSecondRunIsNoop(t *testing.T) {
	svc, db, node := newTestService(t)
	tenantID := node.Generate()

	product := seedProduct(t, db, node, tenantID, "CAFE-500", 42)
	seedLot(t, db, node, tenantID, product, "L1", 8)

	if _, err := svc.Recalculate(context.Background(), tenantID); err != nil {
		t.Fatalf("first recalculate failed: %v", err)
	}

	result, err := svc.Recalculate(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("second recalculate failed: %v", err)
	}
	if result.Corrected != 0 {
		t.Fatalf("expected no corrections on second run, got %d", result.Corrected)
	}
}

func TestRecalculateScopedToTenant(t *testing.T) {
	svc, db, node := newTestService(t)
	tenantA := node.Generate()
	tenantB := node.Generate()

	driftedA := seedProduct(t, db, node, tenantA, "CAFE-500", 99)
	seedLot(t, db, node, tenantA, driftedA, "L1", 1)
	driftedB := seedProduct(t, db, node, tenantB, "CAFE-500", 99)
	seedLot(t, db, node, tenantB, driftedB, "L1", 1)

	if _, err := svc.Recalculate(context.Background(), tenantA); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}

	if got := currentStock(t, db, driftedA); got != 1 {
		t.Fatalf("expected tenant A corrected to 1, got %d", got)
	}
	if got := currentStock(t, db, driftedB); got != 99 {
		t.Fatalf("expected tenant B untouched at 99, got %d", got)
	}
}

func TestRecalculateHandlesNegativeLots(t *testing.T) {
	svc, db, node := newTestService(t)
	tenantID := node.Generate()

	product := seedProduct(t, db, node, tenantID, "CAFE-500", 10)
	seedLot(t, db, node, tenantID, product, "L1", 5)
	seedLot(t, db, node, tenantID, product, "L2", -8)

	if _, err := svc.Recalculate(context.Background(), tenantID); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if got := currentStock(t, db, product); got != -3 {
		t.Fatalf("expected oversold product at -3, got %d", got)
	}
}
