package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashflow-api/internal/model"
	"cashflow-api/internal/testutil"

	"github.com/google/uuid"
)

func TestPageMath(t *testing.T) {
	cases := []struct {
		page       Page
		total      int64
		offset     int
		totalPages int
	}{
		{Page{Number: 1, Size: 10}, 0, 0, 0},
		{Page{Number: 1, Size: 10}, 10, 0, 1},
		{Page{Number: 3, Size: 10}, 21, 20, 3},
		{Page{Number: 0, Size: 0}, 5, 0, 1},
		{Page{Number: -2, Size: 5}, 11, 0, 3},
	}
	for _, tc := range cases {
		if got := tc.page.offset(); got != tc.offset {
			t.Fatalf("%+v offset: expected %d, got %d", tc.page, tc.offset, got)
		}
		if got := tc.page.TotalPages(tc.total); got != tc.totalPages {
			t.Fatalf("%+v total pages of %d: expected %d, got %d", tc.page, tc.total, tc.totalPages, got)
		}
	}
}

func TestLikePatternLowersAndTrims(t *testing.T) {
	if got := likePattern("  CamiSeta "); got != "%camiseta%" {
		t.Fatalf("unexpected pattern %q", got)
	}
}

func TestSalePagingNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSaleRepo(db)
	client := testutil.CreateClient(t, db, "Maria")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		status := model.SaleCompleted
		if i%4 == 0 {
			status = model.SalePending
		}
		testutil.CreateSale(t, db, client, status, "10", base.AddDate(0, 0, i))
	}

	first, total, err := repo.FindPage(context.Background(), Page{Number: 1, Size: 5})
	if err != nil {
		t.Fatalf("FindPage: %v", err)
	}
	if total != 12 || len(first) != 5 {
		t.Fatalf("expected 5 of 12, got %d of %d", len(first), total)
	}
	if !first[0].Date.Equal(base.AddDate(0, 0, 11)) {
		t.Fatalf("expected the newest sale first, got %v", first[0].Date)
	}
	if first[0].Client == nil || first[0].Client.Name != "Maria" {
		t.Fatalf("expected client to be preloaded")
	}

	last, _, err := repo.FindPage(context.Background(), Page{Number: 3, Size: 5})
	if err != nil {
		t.Fatalf("FindPage: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("expected 2 sales on the last page, got %d", len(last))
	}

	_, completed, err := repo.FindCompletedPage(context.Background(), Page{Number: 1, Size: 5})
	if err != nil {
		t.Fatalf("FindCompletedPage: %v", err)
	}
	if completed != 9 {
		t.Fatalf("expected 9 completed sales, got %d", completed)
	}
}

func TestFindCompletedBetweenIsHalfOpen(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSaleRepo(db)
	client := testutil.CreateClient(t, db, "Maria")
	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	testutil.CreateSale(t, db, client, model.SaleCompleted, "1", from)
	testutil.CreateSale(t, db, client, model.SaleCompleted, "2", to.Add(-time.Second))
	testutil.CreateSale(t, db, client, model.SaleCompleted, "4", to)
	testutil.CreateSale(t, db, client, model.SaleCompleted, "8", from.Add(-time.Second))

	sales, err := repo.FindCompletedBetween(context.Background(), from, to)
	if err != nil {
		t.Fatalf("FindCompletedBetween: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("expected 2 sales in [from, to), got %d", len(sales))
	}
}

func TestStockMutations(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepo(db)
	product := testutil.CreateProduct(t, db, testutil.ProductFixture{Name: "Caneca", Stock: 1, Barcodes: []string{"B-1"}})

	if err := repo.DecrementStock(db, product.ID, 3); err != nil {
		t.Fatalf("DecrementStock: %v", err)
	}
	if got := testutil.ReloadProduct(t, db, product.ID).Stock; got != -2 {
		t.Fatalf("expected stock -2, got %d", got)
	}
	if err := repo.DecrementStock(db, uuid.New(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	barcode, err := repo.FindBarcodeWithProduct(db, product.Barcodes[0].ID)
	if err != nil {
		t.Fatalf("FindBarcodeWithProduct: %v", err)
	}
	if barcode.Product == nil || barcode.Product.Name != "Caneca" {
		t.Fatalf("expected the owning product, got %+v", barcode.Product)
	}
	if err := repo.DeleteBarcode(db, barcode.ID); err != nil {
		t.Fatalf("DeleteBarcode: %v", err)
	}
	if _, err := repo.FindBarcodeWithProduct(db, barcode.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a consumed barcode, got %v", err)
	}

	low, err := repo.FindLowStock(context.Background(), 0)
	if err != nil {
		t.Fatalf("FindLowStock: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected one low stock product, got %d", len(low))
	}
}

func TestSupplierCountsSkipDeletedProducts(t *testing.T) {
	db := testutil.NewDB(t)
	suppliers := NewSupplierRepo(db)
	products := NewProductRepo(db)

	product := testutil.CreateProduct(t, db, testutil.ProductFixture{Name: "Caneca", Stock: 1})
	found, err := suppliers.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ProductCount != 1 {
		t.Fatalf("expected one supplier with one product, got %+v", found)
	}

	if err := products.Delete(context.Background(), product.ID, "tester"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	found, err = suppliers.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if found[0].ProductCount != 0 {
		t.Fatalf("deleted products must not count, got %d", found[0].ProductCount)
	}
}
