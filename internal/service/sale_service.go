package service

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const catalogSearchLimit = 20

type SaleService interface {
	CreateSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, actor Actor) (*model.Sale, error)
	ListActiveClients(ctx context.Context) ([]ClientOption, error)
	SearchProducts(ctx context.Context, term string) ([]model.Product, error)
	ListSales(ctx context.Context, page int) (PageResult[model.Sale], error)
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	ItemsSold(ctx context.Context) (int64, error)
}

// CreateSaleItem is one cart line. BarcodeID names the physical unit scanned
// at the counter, if any.
type CreateSaleItem struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"dec_gte=0"`
	BarcodeID *uuid.UUID      `json:"barcode_id,omitempty"`
}

type CreateSaleRequest struct {
	ClientID      uuid.UUID        `json:"client_id" validate:"uuid_required"`
	Status        model.SaleStatus `json:"status"`
	Total         decimal.Decimal  `json:"total" validate:"dec_gte=0"`
	PaymentMethod string           `json:"payment_method" validate:"required,max=50"`
	Items         []CreateSaleItem `json:"items" validate:"dive"`
}

type ClientOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type saleService struct {
	db          *gorm.DB
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	publisher   Publisher
	reports     cache.ReportCache
	log         *zap.Logger
}

func NewSaleService(db *gorm.DB, saleRepo repository.SaleRepository, productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository, publisher Publisher, reports cache.ReportCache, log *zap.Logger) SaleService {
	return &saleService{
		db:          db,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		publisher:   publisherOrNoop(publisher),
		reports:     cacheOrNoop(reports),
		log:         loggerOrNop(log),
	}
}

func (r *CreateSaleRequest) validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	if r.Status != model.SalePending && r.Status != model.SaleCompleted {
		return ErrInvalidStatus
	}
	return validator.Validate(r)
}

// CreateSale registers a sale atomically: header, one item per line, stock
// decrements and barcode consumption all commit together or not at all.
func (s *saleService) CreateSale(ctx context.Context, req *CreateSaleRequest, actor Actor) (*model.Sale, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var sale *model.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.clientRepo.Exists(tx, req.ClientID)
		if err != nil {
			return fmt.Errorf("lookup client: %w", err)
		}
		if !exists {
			return ErrClientNotFound
		}

		sale = &model.Sale{
			ClientID:      req.ClientID,
			Status:        req.Status,
			Total:         req.Total,
			PaymentMethod: req.PaymentMethod,
			Date:          time.Now().UTC(),
		}
		sale.CreatedBy = actor.ID
		sale.UpdatedBy = actor.ID
		if err := s.saleRepo.Create(tx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		for i := range req.Items {
			if err := s.registerLine(tx, sale, &req.Items[i], actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale registered",
		zap.String("sale_id", sale.ID.String()),
		zap.String("client_id", sale.ClientID.String()),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("lines", len(req.Items)),
		zap.String("user", actor.ID))

	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.EventSaleCreated,
		Data: map[string]interface{}{
			"sale_id":   sale.ID,
			"client_id": sale.ClientID,
			"status":    sale.Status,
			"total":     sale.Total,
			"items":     stockMoves(req.Items),
		},
		User:    actor.Name,
		Message: fmt.Sprintf("%s registered a sale of %s", actor.Name, sale.Total.StringFixed(2)),
	})

	return sale, nil
}

// registerLine handles one cart line inside the sale transaction. A barcode
// that no longer exists is not an error: the line is sold without one.
func (s *saleService) registerLine(tx *gorm.DB, sale *model.Sale, line *CreateSaleItem, actor Actor) error {
	var scanned *model.Barcode
	if line.BarcodeID != nil {
		barcode, err := s.productRepo.FindBarcodeWithProduct(tx, *line.BarcodeID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			s.log.Debug("barcode not found, selling line without it",
				zap.String("barcode_id", line.BarcodeID.String()))
		case err != nil:
			return fmt.Errorf("lookup barcode: %w", err)
		default:
			scanned = barcode
		}
	}

	if err := s.productRepo.DecrementStock(tx, line.ProductID, line.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		return fmt.Errorf("decrement stock: %w", err)
	}

	item := &model.SaleItem{
		SaleID:    sale.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
	}
	item.CreatedBy = actor.ID
	item.UpdatedBy = actor.ID
	if scanned != nil {
		code := scanned.Code
		item.RecordedBarcode = &code
	}
	if err := s.saleRepo.CreateItem(tx, item); err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}

	if scanned == nil {
		return nil
	}

	productName := ""
	if scanned.Product != nil {
		productName = scanned.Product.Name
	}
	entry := &model.SoldBarcodeLog{
		Barcode:     scanned.Code,
		ProductName: productName,
		SaleID:      sale.ID,
		SoldAt:      sale.Date,
	}
	if err := s.saleRepo.AppendSoldBarcode(tx, entry); err != nil {
		return fmt.Errorf("log sold barcode: %w", err)
	}
	if err := s.productRepo.DeleteBarcode(tx, scanned.ID); err != nil {
		return fmt.Errorf("consume barcode: %w", err)
	}
	return nil
}

func stockMoves(items []CreateSaleItem) []map[string]interface{} {
	moves := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		moves = append(moves, map[string]interface{}{
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
		})
	}
	return moves
}

// UpdateStatus moves a sale between any two statuses. Stock and barcodes are
// left untouched.
func (s *saleService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus, actor Actor) (*model.Sale, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.saleRepo.UpdateStatus(ctx, id, status, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("update sale status: %w", err)
	}

	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeStockUpdate,
		Action: ws.EventSaleStatusUpdated,
		Data:   map[string]interface{}{"sale_id": id, "status": status},
		User:   actor.Name,
	})

	return s.GetSale(ctx, id)
}

func (s *saleService) ListActiveClients(ctx context.Context) ([]ClientOption, error) {
	clients, err := s.clientRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]ClientOption, len(clients))
	for i, c := range clients {
		options[i] = ClientOption{ID: c.ID, Name: c.Name}
	}
	return options, nil
}

func (s *saleService) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, repository.ProductFilter{
		Search:   term,
		NameOnly: true,
		Limit:    catalogSearchLimit,
	})
}

func (s *saleService) ListSales(ctx context.Context, page int) (PageResult[model.Sale], error) {
	p := repository.Page{Number: page, Size: repository.DefaultPageSize}
	sales, total, err := s.saleRepo.FindPage(ctx, p)
	if err != nil {
		return PageResult[model.Sale]{}, err
	}
	return newPage(sales, p, total), nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

func (s *saleService) ItemsSold(ctx context.Context) (int64, error) {
	return s.saleRepo.SumItemsSold(ctx)
}
