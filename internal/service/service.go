package service

import (
	"context"
	"errors"

	"cashflow-api/internal/cache"
	"cashflow-api/internal/repository"
	"cashflow-api/internal/ws"

	"go.uber.org/zap"
)

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrSaleNotFound     = errors.New("sale not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrInvalidStatus    = errors.New("invalid sale status")
	ErrEmptyCart        = errors.New("sale must contain at least one item")
)

// Publisher receives live events. *ws.Hub implements it.
type Publisher interface {
	Publish(event ws.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

// Actor is the authenticated operator behind a mutation.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// System is used for mutations not triggered by a request.
var System = Actor{ID: "system", Name: "system"}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func newPage[T any](data []T, page repository.Page, total int64) PageResult[T] {
	if page.Number < 1 {
		page.Number = 1
	}
	if data == nil {
		data = []T{}
	}
	return PageResult[T]{
		Data:       data,
		Page:       page.Number,
		Total:      total,
		TotalPages: page.TotalPages(total),
	}
}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func cacheOrNoop(c cache.ReportCache) cache.ReportCache {
	if c == nil {
		return cache.NoopReportCache{}
	}
	return c
}

func loggerOrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// invalidateReports drops cached reports after a committed mutation. A cache
// failure never fails the mutation itself.
func invalidateReports(ctx context.Context, c cache.ReportCache, log *zap.Logger) {
	if err := c.Invalidate(ctx); err != nil {
		log.Warn("report cache invalidation failed", zap.Error(err))
	}
}
