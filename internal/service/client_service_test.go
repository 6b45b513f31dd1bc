package service

import (
	"context"
	"errors"
	"testing"

	"cashflow-api/internal/model"
	"cashflow-api/internal/testutil"
	"cashflow-api/internal/ws"
	"cashflow-api/pkg/validator"

	"github.com/google/uuid"
)

func TestClientLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRepos(db)
	publisher := &recordingPublisher{}
	reports := newMemoryCache()
	svc := NewClientService(r.client, r.sale, publisher, reports, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ClientRequest{Name: "Joana", Phone: "11 99999-0000", Status: model.ClientInactive}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != model.ClientActive {
		t.Fatalf("new clients start as ATIVO, got %s", created.Status)
	}

	updated, err := svc.Update(ctx, created.ID, &ClientRequest{Name: "Joana Silva", Status: model.ClientInactive}, cashier)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Joana Silva" || updated.Status != model.ClientInactive {
		t.Fatalf("unexpected client %+v", updated)
	}

	var verr *validator.ValidationError
	if _, err := svc.Update(ctx, created.ID, &ClientRequest{Name: "Joana", Status: "BLOQUEADO"}, cashier); !errors.As(err, &verr) {
		t.Fatalf("expected a validation error for an unknown status, got %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), &ClientRequest{Name: "X"}, cashier); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, created.ID, cashier); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID, cashier); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected second delete to fail with ErrClientNotFound, got %v", err)
	}

	want := []string{ws.EventClientCreated, ws.EventClientUpdated, ws.EventClientDeleted}
	got := publisher.actions()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
	if reports.invalidations != 3 {
		t.Fatalf("expected 3 invalidations, got %d", reports.invalidations)
	}
}

func TestClientPurchaseHistory(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRepos(db)
	svc := NewClientService(r.client, r.sale, nil, nil, nil)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "Joana")
	never := testutil.CreateClient(t, db, "Pedro")
	testutil.CreateSale(t, db, client, model.SaleCompleted, "40", at(t, "2024-03-01T10:00:00Z"))
	testutil.CreateSale(t, db, client, model.SaleCanceled, "60", at(t, "2024-03-05T10:00:00Z"))

	last, err := svc.LastPurchase(ctx, client.ID)
	if err != nil {
		t.Fatalf("LastPurchase: %v", err)
	}
	if last == nil || !last.Equal(at(t, "2024-03-05T10:00:00Z")) {
		t.Fatalf("expected the most recent sale date, got %v", last)
	}
	none, err := svc.LastPurchase(ctx, never.ID)
	if err != nil || none != nil {
		t.Fatalf("expected no purchase, got %v (%v)", none, err)
	}

	spent, err := svc.TotalSpent(ctx, client.ID)
	if err != nil {
		t.Fatalf("TotalSpent: %v", err)
	}
	if !spent.Equal(testutil.Dec(t, "100")) {
		t.Fatalf("expected 100 spent, got %s", spent)
	}
}

func TestExpenseService(t *testing.T) {
	db := testutil.NewDB(t)
	reports := newMemoryCache()
	svc := NewExpenseService(newRepos(db).expense, reports, nil)
	ctx := context.Background()

	day := at(t, "2024-03-05T12:00:00Z")
	created, err := svc.Create(ctx, &ExpenseRequest{Name: "Aluguel", Value: testutil.Dec(t, "1500"), Date: &day}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.Date.Equal(day) {
		t.Fatalf("expected date %v, got %v", day, created.Date)
	}
	undated, err := svc.Create(ctx, &ExpenseRequest{Name: "Café", Value: testutil.Dec(t, "12.5")}, cashier)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if undated.Date.IsZero() {
		t.Fatalf("an undated expense is booked now")
	}

	var verr *validator.ValidationError
	if _, err := svc.Create(ctx, &ExpenseRequest{Name: "Zero", Value: testutil.Dec(t, "0")}, cashier); !errors.As(err, &verr) {
		t.Fatalf("expected a validation error for a zero value, got %v", err)
	}

	page, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || page.TotalPages != 1 || page.Data[0].Name != "Café" {
		t.Fatalf("expected newest first, got %+v", page)
	}

	if err := svc.Delete(ctx, created.ID, cashier); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, cashier); !errors.Is(err, ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
	if reports.invalidations != 3 {
		t.Fatalf("expected 3 invalidations, got %d", reports.invalidations)
	}
}

func TestSupplierAndCategoryCounts(t *testing.T) {
	db := testutil.NewDB(t)
	r := newRepos(db)
	publisher := &recordingPublisher{}
	suppliers := NewSupplierService(r.supplier, publisher, nil)
	categories := NewCategoryService(r.category, publisher, nil)
	products := NewProductService(db, r.product, r.supplier, r.category, nil, nil, nil)
	ctx := context.Background()

	supplier, err := suppliers.Create(ctx, &SupplierRequest{Name: "Malharia Sul", CNPJ: "12.345.678/0001-90", State: "RS"}, cashier)
	if err != nil {
		t.Fatalf("Create supplier: %v", err)
	}
	category, err := categories.Create(ctx, &CategoryRequest{Name: "Camisetas", Color: "#ff0000"}, cashier)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	for _, name := range []string{"Lisa", "Estampada"} {
		_, err := products.Create(ctx, &ProductRequest{
			Name: "Camiseta " + name, SellPrice: testutil.Dec(t, "40"), CostPrice: testutil.Dec(t, "15"),
			SupplierID: supplier.ID, CategoryIDs: []uuid.UUID{category.ID},
		}, cashier)
		if err != nil {
			t.Fatalf("Create product: %v", err)
		}
	}

	found, err := suppliers.Search(ctx, "345.678")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ProductCount != 2 {
		t.Fatalf("expected one supplier with 2 products, got %+v", found)
	}

	city := "Porto Alegre"
	updated, err := suppliers.Update(ctx, supplier.ID, &SupplierUpdateRequest{City: &city}, cashier)
	if err != nil {
		t.Fatalf("Update supplier: %v", err)
	}
	if updated.City != "Porto Alegre" || updated.Name != "Malharia Sul" {
		t.Fatalf("partial update must keep other fields, got %+v", updated.Supplier)
	}

	listed, err := categories.List(ctx)
	if err != nil {
		t.Fatalf("List categories: %v", err)
	}
	if len(listed) != 1 || listed[0].ProductCount != 2 {
		t.Fatalf("expected one category with 2 products, got %+v", listed)
	}

	if _, err := categories.Update(ctx, uuid.New(), &CategoryRequest{Name: "X"}, cashier); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if err := suppliers.Delete(ctx, uuid.New(), cashier); !errors.Is(err, ErrSupplierNotFound) {
		t.Fatalf("expected ErrSupplierNotFound, got %v", err)
	}

	want := []string{ws.EventSupplierCreated, ws.EventCategoryCreated, ws.EventSupplierUpdated}
	got := publisher.actions()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}
