// Package testutil opens an in-memory database with the production schema and
// builds fixtures for repository, service and handler tests.
package testutil

import (
	"testing"
	"time"

	"cashflow-api/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. A single connection is
// used so every statement sees the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func Dec(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func CreateClient(t testing.TB, db *gorm.DB, name string) *model.Client {
	t.Helper()
	client := &model.Client{Name: name, Status: model.ClientActive}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

func CreateSupplier(t testing.TB, db *gorm.DB, name string) *model.Supplier {
	t.Helper()
	supplier := &model.Supplier{Name: name}
	if err := db.Create(supplier).Error; err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	return supplier
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// ProductFixture describes a fixture product. Zero prices default to 0.
type ProductFixture struct {
	Name      string
	Stock     int
	SellPrice string
	CostPrice string
	Barcodes  []string
}

// CreateProduct inserts a product with its own supplier and barcode pool.
func CreateProduct(t testing.TB, db *gorm.DB, spec ProductFixture) *model.Product {
	t.Helper()
	if spec.SellPrice == "" {
		spec.SellPrice = "0"
	}
	if spec.CostPrice == "" {
		spec.CostPrice = "0"
	}
	supplier := CreateSupplier(t, db, "Supplier of "+spec.Name)

	product := &model.Product{
		Name:          spec.Name,
		SellPrice:     Dec(t, spec.SellPrice),
		CostPrice:     Dec(t, spec.CostPrice),
		Stock:         spec.Stock,
		LifetimeStock: spec.Stock,
		SupplierID:    supplier.ID,
	}
	product.ID = uuid.New()
	for _, code := range spec.Barcodes {
		product.Barcodes = append(product.Barcodes, model.Barcode{Code: code, ProductID: product.ID})
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// SaleLine is one item of a fixture sale.
type SaleLine struct {
	Product  *model.Product
	Quantity int
	Price    string
}

// CreateSale inserts a sale directly, bypassing stock and barcode handling, so
// reports can be tested with controlled dates.
func CreateSale(t testing.TB, db *gorm.DB, client *model.Client, status model.SaleStatus, total string, date time.Time, lines ...SaleLine) *model.Sale {
	t.Helper()
	sale := &model.Sale{
		ClientID:      client.ID,
		Status:        status,
		Total:         Dec(t, total),
		PaymentMethod: "PIX",
		Date:          date.UTC(),
	}
	if err := db.Omit("Client", "Items", "SoldBarcodes").Create(sale).Error; err != nil {
		t.Fatalf("create sale: %v", err)
	}
	for _, line := range lines {
		item := &model.SaleItem{
			SaleID:    sale.ID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			UnitPrice: Dec(t, line.Price),
		}
		if err := db.Omit("Product").Create(item).Error; err != nil {
			t.Fatalf("create sale item: %v", err)
		}
	}
	return sale
}

func CreateExpense(t testing.TB, db *gorm.DB, name, value string, date time.Time) *model.Expense {
	t.Helper()
	expense := &model.Expense{Name: name, Value: Dec(t, value), Date: date.UTC()}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("create expense: %v", err)
	}
	return expense
}

func Count(t testing.TB, db *gorm.DB, value interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func ReloadProduct(t testing.TB, db *gorm.DB, id uuid.UUID) *model.Product {
	t.Helper()
	var product model.Product
	if err := db.Unscoped().Preload("Barcodes").First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return &product
}
