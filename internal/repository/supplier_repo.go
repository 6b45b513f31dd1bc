package repository

import (
	"context"
	"time"

	"cashflow-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierWithCount pairs a supplier with how many live products it provides.
type SupplierWithCount struct {
	model.Supplier
	ProductCount int64 `json:"product_count"`
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindAll(ctx context.Context) ([]model.Supplier, error)
	Search(ctx context.Context, term string) ([]SupplierWithCount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierWithCount, error)
	Exists(tx *gorm.DB, id uuid.UUID) (bool, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Omit("Products").Create(supplier).Error
}

func (r *supplierRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Updates(map[string]interface{}{
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

func (r *supplierRepo) FindAll(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

// Search matches name, cnpj or email. An empty term returns every supplier.
func (r *supplierRepo) Search(ctx context.Context, term string) ([]SupplierWithCount, error) {
	var suppliers []model.Supplier
	query := r.db.WithContext(ctx)
	if term != "" {
		pattern := likePattern(term)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(cnpj) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}
	if err := query.Order("created_at DESC").Find(&suppliers).Error; err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(suppliers))
	for i, s := range suppliers {
		ids[i] = s.ID
	}
	counts, err := r.productCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]SupplierWithCount, len(suppliers))
	for i, s := range suppliers {
		result[i] = SupplierWithCount{Supplier: s, ProductCount: counts[s.ID]}
	}
	return result, nil
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*SupplierWithCount, error) {
	var supplier model.Supplier
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&supplier, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &SupplierWithCount{Supplier: supplier, ProductCount: int64(len(supplier.Products))}, nil
}

func (r *supplierRepo) Exists(tx *gorm.DB, id uuid.UUID) (bool, error) {
	var count int64
	if err := tx.Model(&model.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *supplierRepo) productCounts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		SupplierID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("supplier_id, COUNT(*) AS total").
		Where("supplier_id IN ?", ids).
		Group("supplier_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SupplierID] = row.Total
	}
	return counts, nil
}
