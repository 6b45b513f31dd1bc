package service

import (
	"context"
	"errors"
	"time"

	"cashflow-api/internal/cache"
	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ExpenseService interface {
	Create(ctx context.Context, req *ExpenseRequest, actor Actor) (*model.Expense, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	List(ctx context.Context, page int) (PageResult[model.Expense], error)
}

// ExpenseRequest leaves Date nil to book the expense now.
type ExpenseRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value" validate:"dec_gte=0.01"`
	Date        *time.Time      `json:"date"`
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	reports     cache.ReportCache
	log         *zap.Logger
}

func NewExpenseService(expenseRepo repository.ExpenseRepository, reports cache.ReportCache, log *zap.Logger) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		reports:     cacheOrNoop(reports),
		log:         loggerOrNop(log),
	}
}

func (s *expenseService) Create(ctx context.Context, req *ExpenseRequest, actor Actor) (*model.Expense, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil && !req.Date.IsZero() {
		date = req.Date.UTC()
	}
	expense := &model.Expense{
		Name:        req.Name,
		Description: req.Description,
		Value:       req.Value,
		Date:        date,
	}
	expense.CreatedBy = actor.ID
	expense.UpdatedBy = actor.ID
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.reports, s.log)
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.expenseRepo.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	invalidateReports(ctx, s.reports, s.log)
	return nil
}

func (s *expenseService) List(ctx context.Context, page int) (PageResult[model.Expense], error) {
	p := repository.Page{Number: page, Size: repository.DefaultPageSize}
	expenses, total, err := s.expenseRepo.FindPage(ctx, p)
	if err != nil {
		return PageResult[model.Expense]{}, err
	}
	return newPage(expenses, p, total), nil
}
