package repository

import (
	"context"
	"strings"
	"time"

	"cashflow-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows FindAll. Search matches name, sku or any barcode code
// unless NameOnly is set.
type ProductFilter struct {
	Search     string
	NameOnly   bool
	CategoryID *uuid.UUID
	Limit      int
}

// ProductRepository is the catalog store: products, their barcode pool and
// the stock counters. Methods taking a *gorm.DB run inside the caller's
// transaction.
type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	Update(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ReplaceBarcodes(tx *gorm.DB, productID uuid.UUID, codes []string) error
	ReplaceCategories(tx *gorm.DB, product *model.Product, categories []model.Category) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	Count(ctx context.Context) (int64, error)
	SumLifetimeStock(ctx context.Context) (int64, error)
	SumStock(ctx context.Context) (int64, error)
	FindLowStock(ctx context.Context, threshold int) ([]model.Product, error)

	DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) error
	FindBarcodeWithProduct(tx *gorm.DB, id uuid.UUID) (*model.Barcode, error)
	DeleteBarcode(tx *gorm.DB, id uuid.UUID) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// Create inserts the product with its barcodes and links existing categories
// without touching the category rows themselves.
func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Categories.*").Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	query := r.db.WithContext(ctx).Preload("Barcodes").Preload("Categories")

	if filter.CategoryID != nil {
		query = query.Where("id IN (?)",
			r.db.Table("product_categories").Select("product_id").Where("category_id = ?", *filter.CategoryID))
	}
	if filter.Search != "" && filter.NameOnly {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	} else if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR id IN (?)",
			pattern, pattern,
			r.db.Model(&model.Barcode{}).Select("product_id").Where("LOWER(code) LIKE ?", pattern))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Supplier").Preload("Categories").Preload("Barcodes").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) Update(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	res := tx.Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceBarcodes drops the product's whole active pool and recreates it from
// codes. Blank codes are skipped.
func (r *productRepo) ReplaceBarcodes(tx *gorm.DB, productID uuid.UUID, codes []string) error {
	if err := tx.Where("product_id = ?", productID).Delete(&model.Barcode{}).Error; err != nil {
		return err
	}
	barcodes := BuildBarcodes(productID, codes)
	if len(barcodes) == 0 {
		return nil
	}
	return tx.Create(&barcodes).Error
}

func (r *productRepo) ReplaceCategories(tx *gorm.DB, product *model.Product, categories []model.Category) error {
	if len(categories) == 0 {
		return tx.Model(product).Association("Categories").Clear()
	}
	return tx.Model(product).Association("Categories").Replace(categories)
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now().UTC(),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) SumLifetimeStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COALESCE(SUM(lifetime_stock), 0)").Scan(&total).Error
	return total, err
}

func (r *productRepo) SumStock(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COALESCE(SUM(stock), 0)").Scan(&total).Error
	return total, err
}

func (r *productRepo) FindLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("stock <= ?", threshold).Order("stock ASC, name ASC").Find(&products).Error
	return products, err
}

// DecrementStock subtracts quantity in a single UPDATE so concurrent sales
// never lose a decrement. There is no floor: stock may go negative.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int) error {
	res := tx.Model(&model.Product{}).Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindBarcodeWithProduct locks the barcode row so two sales cannot consume the
// same unit. The owning product is loaded even when soft-deleted.
func (r *productRepo) FindBarcodeWithProduct(tx *gorm.DB, id uuid.UUID) (*model.Barcode, error) {
	var barcode model.Barcode
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&barcode, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &barcode, nil
}

func (r *productRepo) DeleteBarcode(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Barcode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// BuildBarcodes turns raw codes into barcode rows for a product, skipping blanks.
func BuildBarcodes(productID uuid.UUID, codes []string) []model.Barcode {
	barcodes := make([]model.Barcode, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		barcodes = append(barcodes, model.Barcode{Code: code, ProductID: productID})
	}
	return barcodes
}
