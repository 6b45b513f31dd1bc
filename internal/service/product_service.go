package service

import (
	"context"
	"errors"
	"fmt"

	"cashflow-api/internal/cache"
	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/internal/ws"
	"cashflow-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const productListLimit = 50

type ProductService interface {
	Create(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, search string, categoryID *uuid.UUID) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	LifetimeStockSum(ctx context.Context) (int64, error)
	StockSum(ctx context.Context) (int64, error)
}

// ProductRequest is the full editable state of a product. Barcodes replace the
// product's whole pool on update.
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" validate:"max=50"`
	SellPrice   decimal.Decimal `json:"sell_price" validate:"dec_gte=0"`
	CostPrice   decimal.Decimal `json:"cost_price" validate:"dec_gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Unit        string          `json:"unit" validate:"max=20"`
	Weight      float64         `json:"weight" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	SupplierID  uuid.UUID       `json:"supplier_id" validate:"uuid_required"`
	CategoryIDs []uuid.UUID     `json:"category_ids"`
	Barcodes    []string        `json:"barcodes"`
}

type productService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	categoryRepo repository.CategoryRepository
	publisher    Publisher
	reports      cache.ReportCache
	log          *zap.Logger
}

func NewProductService(db *gorm.DB, productRepo repository.ProductRepository, supplierRepo repository.SupplierRepository,
	categoryRepo repository.CategoryRepository, publisher Publisher, reports cache.ReportCache, log *zap.Logger) ProductService {
	return &productService{
		db:           db,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		categoryRepo: categoryRepo,
		publisher:    publisherOrNoop(publisher),
		reports:      cacheOrNoop(reports),
		log:          loggerOrNop(log),
	}
}

func (s *productService) Create(ctx context.Context, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:          req.Name,
		Description:   req.Description,
		SKU:           req.SKU,
		SellPrice:     req.SellPrice,
		CostPrice:     req.CostPrice,
		Stock:         req.Stock,
		LifetimeStock: req.Stock,
		Unit:          req.Unit,
		Weight:        req.Weight,
		ImageURL:      req.ImageURL,
		SupplierID:    req.SupplierID,
	}
	product.ID = uuid.New()
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID
	product.Barcodes = repository.BuildBarcodes(product.ID, req.Barcodes)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireSupplier(tx, req.SupplierID); err != nil {
			return err
		}
		categories, err := s.categoryRepo.FindByIDs(tx, req.CategoryIDs)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		product.Categories = categories
		return s.productRepo.Create(tx, product)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.String("product_id", product.ID.String()), zap.Int("stock", product.Stock))
	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.EventProductCreated,
		Data: map[string]interface{}{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
		},
		User:    actor.Name,
		Message: fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})

	return s.Get(ctx, product.ID)
}

// Update rewrites the product, its barcode pool and its categories in one
// transaction. Raising stock counts the difference as received units.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var oldStock int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		oldStock = existing.Stock

		if err := s.requireSupplier(tx, req.SupplierID); err != nil {
			return err
		}
		if err := s.productRepo.ReplaceBarcodes(tx, id, req.Barcodes); err != nil {
			return fmt.Errorf("replace barcodes: %w", err)
		}
		categories, err := s.categoryRepo.FindByIDs(tx, req.CategoryIDs)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		if err := s.productRepo.ReplaceCategories(tx, existing, categories); err != nil {
			return fmt.Errorf("replace categories: %w", err)
		}

		// lifetime_stock is written once, at creation.
		return s.productRepo.Update(tx, id, map[string]interface{}{
			"name":        req.Name,
			"description": req.Description,
			"sku":         req.SKU,
			"sell_price":  req.SellPrice,
			"cost_price":  req.CostPrice,
			"stock":       req.Stock,
			"unit":        req.Unit,
			"weight":      req.Weight,
			"image_url":   req.ImageURL,
			"supplier_id": req.SupplierID,
			"updated_by":  actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.EventProductUpdated,
		Data: map[string]interface{}{
			"id":        id,
			"name":      req.Name,
			"old_stock": oldStock,
			"new_stock": req.Stock,
		},
		User:    actor.Name,
		Message: fmt.Sprintf("%s updated product '%s'", actor.Name, req.Name),
	})

	return s.Get(ctx, id)
}

func (s *productService) requireSupplier(tx *gorm.DB, id uuid.UUID) error {
	ok, err := s.supplierRepo.Exists(tx, id)
	if err != nil {
		return fmt.Errorf("lookup supplier: %w", err)
	}
	if !ok {
		return ErrSupplierNotFound
	}
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.productRepo.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.EventProductDeleted,
		Data:   map[string]interface{}{"id": id},
		User:   actor.Name,
	})
	return nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

func (s *productService) List(ctx context.Context, search string, categoryID *uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, repository.ProductFilter{
		Search:     search,
		CategoryID: categoryID,
		Limit:      productListLimit,
	})
}

func (s *productService) Count(ctx context.Context) (int64, error) {
	return s.productRepo.Count(ctx)
}

func (s *productService) LifetimeStockSum(ctx context.Context) (int64, error) {
	return s.productRepo.SumLifetimeStock(ctx)
}

func (s *productService) StockSum(ctx context.Context) (int64, error) {
	return s.productRepo.SumStock(ctx)
}
