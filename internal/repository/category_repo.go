package repository

import (
	"context"
	"time"

	"cashflow-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryWithCount struct {
	model.Category
	ProductCount int64 `json:"product_count"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Category, error)
	FindAllWithCount(ctx context.Context) ([]CategoryWithCount, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
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

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// FindByIDs silently skips ids that do not exist.
func (r *categoryRepo) FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Category, error) {
	categories := []model.Category{}
	if len(ids) == 0 {
		return categories, nil
	}
	err := tx.Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

// FindAllWithCount counts only products that are not soft-deleted.
func (r *categoryRepo) FindAllWithCount(ctx context.Context) ([]CategoryWithCount, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&categories).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		CategoryID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).Table("product_categories").
		Select("product_categories.category_id, COUNT(*) AS total").
		Joins("JOIN products ON products.id = product_categories.product_id AND products.deleted_at IS NULL").
		Group("product_categories.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Total
	}

	result := make([]CategoryWithCount, len(categories))
	for i, c := range categories {
		result[i] = CategoryWithCount{Category: c, ProductCount: counts[c.ID]}
	}
	return result, nil
}
