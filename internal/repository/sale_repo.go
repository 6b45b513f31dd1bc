package repository

import (
	"context"
	"time"

	"cashflow-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleRepository stores sale headers, their line items and the sold barcode
// log. The log is append-only: there is no update or delete for it.
type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	CreateItem(tx *gorm.DB, item *model.SaleItem) error
	AppendSoldBarcode(tx *gorm.DB, entry *model.SoldBarcodeLog) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindPage(ctx context.Context, page Page) ([]model.Sale, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, updatedBy string) error
	SumItemsSold(ctx context.Context) (int64, error)

	FindCompleted(ctx context.Context) ([]model.Sale, error)
	FindCompletedBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error)
	FindCompletedPage(ctx context.Context, page Page) ([]model.Sale, int64, error)

	LastSaleDate(ctx context.Context, clientID uuid.UUID) (*time.Time, error)
	SumTotalByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

// unscoped keeps snapshots readable after the referenced row is soft-deleted.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Omit("Client", "Items", "SoldBarcodes").Create(sale).Error
}

func (r *saleRepo) CreateItem(tx *gorm.DB, item *model.SaleItem) error {
	return tx.Omit("Product").Create(item).Error
}

func (r *saleRepo) AppendSoldBarcode(tx *gorm.DB, entry *model.SoldBarcodeLog) error {
	return tx.Create(entry).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Preload("Client", unscoped).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product", unscoped).
		Preload("SoldBarcodes", func(db *gorm.DB) *gorm.DB { return db.Order("sold_at ASC") }).
		First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (r *saleRepo) FindPage(ctx context.Context, page Page) ([]model.Sale, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.Sale{}), page)
}

func (r *saleRepo) FindCompletedPage(ctx context.Context, page Page) ([]model.Sale, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&model.Sale{}).Where("status = ?", model.SaleCompleted), page)
}

func (r *saleRepo) page(query *gorm.DB, page Page) ([]model.Sale, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.normalize()
	var sales []model.Sale
	err := query.
		Preload("Client", unscoped).
		Preload("Items").
		Preload("Items.Product", unscoped).
		Order("date DESC").
		Offset(page.offset()).Limit(page.Size).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_by": updatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumItemsSold counts sold units across every sale regardless of status.
func (r *saleRepo) SumItemsSold(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

func (r *saleRepo) FindCompleted(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.completed(ctx).Order("date ASC").Find(&sales).Error
	return sales, err
}

// FindCompletedBetween returns completed sales with from <= date < to, oldest first.
func (r *saleRepo) FindCompletedBetween(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.completed(ctx).
		Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) completed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Client", unscoped).
		Preload("Items").
		Preload("Items.Product", unscoped).
		Where("status = ?", model.SaleCompleted)
}

func (r *saleRepo) LastSaleDate(ctx context.Context, clientID uuid.UUID) (*time.Time, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Select("date").
		Where("client_id = ?", clientID).
		Order("date DESC").Limit(1).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}
	return &sales[0].Date, nil
}

func (r *saleRepo) SumTotalByClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("client_id = ?", clientID).
		Scan(&row).Error
	return row.Total, err
}
