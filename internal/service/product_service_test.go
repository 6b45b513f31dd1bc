package service

import (
	"context"
	"errors"
	"testing"

	"cashflow-api/internal/model"
	"cashflow-api/internal/testutil"
	"cashflow-api/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productEnv struct {
	db        *gorm.DB
	svc       ProductService
	publisher *recordingPublisher
	cache     *memoryCache
}

func newProductEnv(t *testing.T) *productEnv {
	t.Helper()
	db := testutil.NewDB(t)
	r := newRepos(db)
	env := &productEnv{db: db, publisher: &recordingPublisher{}, cache: newMemoryCache()}
	env.svc = NewProductService(db, r.product, r.supplier, r.category, env.publisher, env.cache, nil)
	return env
}

func codes(barcodes []model.Barcode) map[string]bool {
	out := make(map[string]bool, len(barcodes))
	for _, b := range barcodes {
		out[b.Code] = true
	}
	return out
}

func TestProductLifecycle(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	supplier := testutil.CreateSupplier(t, env.db, "Malharia Sul")
	shirts := testutil.CreateCategory(t, env.db, "Camisetas")
	promo := testutil.CreateCategory(t, env.db, "Promoção")

	req := &ProductRequest{
		Name:        "Camiseta Básica",
		SKU:         "CB-01",
		SellPrice:   testutil.Dec(t, "49.90"),
		CostPrice:   testutil.Dec(t, "18.00"),
		Stock:       10,
		SupplierID:  supplier.ID,
		CategoryIDs: []uuid.UUID{shirts.ID},
		Barcodes:    []string{"A1", " ", "A2"},
	}
	created, err := env.svc.Create(ctx, req, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.LifetimeStock != 10 {
		t.Fatalf("expected lifetime stock 10, got %d", created.LifetimeStock)
	}
	if got := codes(created.Barcodes); len(got) != 2 || !got["A1"] || !got["A2"] {
		t.Fatalf("expected barcodes A1 and A2, got %+v", created.Barcodes)
	}
	if len(created.Categories) != 1 || created.Categories[0].ID != shirts.ID {
		t.Fatalf("expected category Camisetas, got %+v", created.Categories)
	}

	req.Stock = 15
	req.Barcodes = []string{"B1"}
	req.CategoryIDs = []uuid.UUID{promo.ID}
	updated, err := env.svc.Update(ctx, created.ID, req, cashier)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Stock != 15 || updated.LifetimeStock != 10 {
		t.Fatalf("raising stock must keep lifetime at 10, got stock %d lifetime %d", updated.Stock, updated.LifetimeStock)
	}
	if got := codes(updated.Barcodes); len(got) != 1 || !got["B1"] {
		t.Fatalf("expected barcode pool to be replaced by B1, got %+v", updated.Barcodes)
	}
	if len(updated.Categories) != 1 || updated.Categories[0].ID != promo.ID {
		t.Fatalf("expected category Promoção, got %+v", updated.Categories)
	}

	req.Stock = 12
	req.CategoryIDs = nil
	lowered, err := env.svc.Update(ctx, created.ID, req, cashier)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if lowered.Stock != 12 || lowered.LifetimeStock != 10 {
		t.Fatalf("lowering stock must keep lifetime at 10, got stock %d lifetime %d", lowered.Stock, lowered.LifetimeStock)
	}
	if len(lowered.Categories) != 0 {
		t.Fatalf("expected categories to be cleared, got %+v", lowered.Categories)
	}

	if err := env.svc.Delete(ctx, created.ID, cashier); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.svc.Get(ctx, created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	if err := env.svc.Delete(ctx, created.ID, cashier); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected second delete to fail with ErrProductNotFound, got %v", err)
	}

	want := []string{ws.EventProductCreated, ws.EventProductUpdated, ws.EventProductUpdated, ws.EventProductDeleted}
	got := env.publisher.actions()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
	if env.cache.invalidations != 4 {
		t.Fatalf("expected 4 cache invalidations, got %d", env.cache.invalidations)
	}
}

func TestCreateProductRequiresExistingSupplier(t *testing.T) {
	env := newProductEnv(t)

	_, err := env.svc.Create(context.Background(), &ProductRequest{
		Name:       "Órfão",
		SellPrice:  testutil.Dec(t, "1"),
		CostPrice:  testutil.Dec(t, "1"),
		SupplierID: uuid.New(),
	}, cashier)
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}
	if n := testutil.Count(t, env.db, &model.Product{}); n != 0 {
		t.Fatalf("expected no product rows, got %d", n)
	}
}

func TestUpdateUnknownProduct(t *testing.T) {
	env := newProductEnv(t)
	supplier := testutil.CreateSupplier(t, env.db, "Malharia Sul")

	_, err := env.svc.Update(context.Background(), uuid.New(), &ProductRequest{
		Name:       "Fantasma",
		SellPrice:  testutil.Dec(t, "1"),
		CostPrice:  testutil.Dec(t, "1"),
		SupplierID: supplier.ID,
	}, cashier)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestListMatchesNameSkuOrBarcode(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	testutil.CreateProduct(t, env.db, testutil.ProductFixture{Name: "Caneca", Stock: 1, Barcodes: []string{"789100"}})
	testutil.CreateProduct(t, env.db, testutil.ProductFixture{Name: "Camiseta", Stock: 1})
	if err := env.db.Model(&model.Product{}).Where("name = ?", "Camiseta").Update("sku", "TSHIRT-9").Error; err != nil {
		t.Fatalf("set sku: %v", err)
	}

	cases := map[string]string{
		"canec":  "Caneca",
		"tshirt": "Camiseta",
		"789100": "Caneca",
	}
	for term, want := range cases {
		found, err := env.svc.List(ctx, term, nil)
		if err != nil {
			t.Fatalf("List(%q): %v", term, err)
		}
		if len(found) != 1 || found[0].Name != want {
			t.Fatalf("List(%q): expected %s, got %+v", term, want, found)
		}
	}

	all, err := env.svc.List(ctx, "", nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Name != "Camiseta" {
		t.Fatalf("expected both products ordered by name, got %+v", all)
	}
}

func TestListFiltersByCategory(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	supplier := testutil.CreateSupplier(t, env.db, "Malharia Sul")
	mugs := testutil.CreateCategory(t, env.db, "Canecas")

	_, err := env.svc.Create(ctx, &ProductRequest{
		Name: "Caneca Azul", SellPrice: testutil.Dec(t, "30"), CostPrice: testutil.Dec(t, "10"),
		SupplierID: supplier.ID, CategoryIDs: []uuid.UUID{mugs.ID},
	}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.CreateProduct(t, env.db, testutil.ProductFixture{Name: "Boné", Stock: 1})

	found, err := env.svc.List(ctx, "", &mugs.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Caneca Azul" {
		t.Fatalf("expected only Caneca Azul, got %+v", found)
	}
}

func TestStockTotals(t *testing.T) {
	env := newProductEnv(t)
	ctx := context.Background()
	testutil.CreateProduct(t, env.db, testutil.ProductFixture{Name: "A", Stock: 4})
	testutil.CreateProduct(t, env.db, testutil.ProductFixture{Name: "B", Stock: 6})

	count, err := env.svc.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count: expected 2, got %d (%v)", count, err)
	}
	stock, err := env.svc.StockSum(ctx)
	if err != nil || stock != 10 {
		t.Fatalf("StockSum: expected 10, got %d (%v)", stock, err)
	}
	lifetime, err := env.svc.LifetimeStockSum(ctx)
	if err != nil || lifetime != 10 {
		t.Fatalf("LifetimeStockSum: expected 10, got %d (%v)", lifetime, err)
	}
}
