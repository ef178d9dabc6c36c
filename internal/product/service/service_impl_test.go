package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/varejotech/balcao/internal/clock"
	"github.com/varejotech/balcao/internal/product/domain"
	"github.com/varejotech/balcao/internal/product/repository"
	dbpkg "github.com/varejotech/balcao/pkg/db"
	"github.com/varejotech/balcao/pkg/db/pagination"
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
	if err := dbConn.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(baseTime),
		Repo:  repository.Provide(),
	})
	return &testEnv{svc: svc, db: dbConn, node: node, tenantID: node.Generate()}
}

func upsert(sku, name string) domain.UpsertRequest {
	return domain.UpsertRequest{
		SKU:       sku,
		Name:      name,
		SalePrice: 10,
		CostPrice: 6,
		MinStock:  2,
	}
}

func TestCreateDuplicateSKU(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.svc.Create(context.Background(), env.tenantID, upsert("CAFE-500", "Cafe 500g")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := env.svc.Create(context.Background(), env.tenantID, upsert("CAFE-500", "Outro cafe"))
	if err != domain.ErrSKUExists {
		t.Fatalf("expected ErrSKUExists, got %v", err)
	}
}

func TestCreateSameSKUDifferentTenant(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.svc.Create(context.Background(), env.tenantID, upsert("CAFE-500", "Cafe 500g")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	otherTenant := env.node.Generate()
	if _, err := env.svc.Create(context.Background(), otherTenant, upsert("CAFE-500", "Cafe 500g")); err != nil {
		t.Fatalf("expected sku scoped per tenant, got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	cases := []domain.UpsertRequest{
		{SKU: "", Name: "Sem sku"},
		{SKU: "X", Name: "  "},
		{SKU: "X", Name: "Preco negativo", SalePrice: -1},
	}
	for _, req := range cases {
		if _, err := env.svc.Create(context.Background(), env.tenantID, req); err != domain.ErrInvalidRequest {
			t.Fatalf("expected ErrInvalidRequest for %+v, got %v", req, err)
		}
	}
}

func TestUpdateKeepsImageWhenOmitted(t *testing.T) {
	env := newTestEnv(t)

	req := upsert("CAFE-500", "Cafe 500g")
	req.ImageKey = "products/1/cafe.jpg"
	created, err := env.svc.Create(context.Background(), env.tenantID, req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	update := upsert("CAFE-500", "Cafe 500g torrado")
	updated, err := env.svc.Update(context.Background(), env.tenantID, created.ID, update)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Cafe 500g torrado" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}
	if updated.ImageKey != "products/1/cafe.jpg" {
		t.Fatalf("expected image key kept, got %q", updated.ImageKey)
	}
}

func TestGetIsTenantScoped(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Create(context.Background(), env.tenantID, upsert("CAFE-500", "Cafe 500g"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	otherTenant := env.node.Generate()
	if _, err := env.svc.Get(context.Background(), otherTenant, created.ID); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign tenant, got %v", err)
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	env := newTestEnv(t)

	for _, sku := range []string{"A-1", "A-2", "A-3", "A-4", "A-5"} {
		if _, err := env.svc.Create(context.Background(), env.tenantID, upsert(sku, "Produto "+sku)); err != nil {
			t.Fatalf("create %s failed: %v", sku, err)
		}
	}

	first, info, err := env.svc.List(context.Background(), env.tenantID, domain.ListFilter{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 products, got %d", len(first))
	}
	if info == nil || info.NextPageToken == "" {
		t.Fatalf("expected next page token, got %+v", info)
	}

	second, _, err := env.svc.List(context.Background(), env.tenantID, domain.ListFilter{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken},
	})
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("expected 2 products on second page, got %d", len(second))
	}
	if second[0].ID == first[0].ID || second[0].ID == first[1].ID {
		t.Fatal("expected second page to advance past the first")
	}
}

func TestListFiltersLowStock(t *testing.T) {
	env := newTestEnv(t)

	low, err := env.svc.Create(context.Background(), env.tenantID, upsert("BAIXO-1", "Quase acabando"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	ok, err := env.svc.Create(context.Background(), env.tenantID, upsert("CHEIO-1", "Sobrando"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	env.db.Model(&domain.Product{}).Where("id = ?", low.ID).Update("current_stock", 1)
	env.db.Model(&domain.Product{}).Where("id = ?", ok.ID).Update("current_stock", 50)

	products, _, err := env.svc.List(context.Background(), env.tenantID, domain.ListFilter{LowStock: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(products) != 1 || products[0].ID != low.ID {
		t.Fatalf("expected only the low stock product, got %+v", products)
	}
}
