package repository

import (
	"context"
	"time"

	"cashflow-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindPage(ctx context.Context, page Page) ([]model.Expense, int64, error)
	FindAll(ctx context.Context) ([]model.Expense, error)
	SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type expenseRepo struct {
	db *gorm.DB
}

func NewExpenseRepo(db *gorm.DB) ExpenseRepository {
	return &expenseRepo{db}
}

func (r *expenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Expense{}).Where("id = ?", id).Updates(map[string]interface{}{
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

func (r *expenseRepo) FindPage(ctx context.Context, page Page) ([]model.Expense, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&model.Expense{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.normalize()
	var expenses []model.Expense
	err := query.Order("date DESC").Offset(page.offset()).Limit(page.Size).Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepo) FindAll(ctx context.Context) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).Order("date ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) SumBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("date >= ? AND date < ?", from.UTC(), to.UTC()).
		Scan(&row).Error
	return row.Total, err
}
