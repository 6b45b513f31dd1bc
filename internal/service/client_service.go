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
)

type ClientService interface {
	Create(ctx context.Context, req *ClientRequest, actor Actor) (*model.Client, error)
	Update(ctx context.Context, id uuid.UUID, req *ClientRequest, actor Actor) (*model.Client, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	List(ctx context.Context) ([]model.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
	LastPurchase(ctx context.Context, id uuid.UUID) (*time.Time, error)
	TotalSpent(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
}

type ClientRequest struct {
	Name    string             `json:"name" validate:"required,max=255"`
	Phone   string             `json:"phone" validate:"max=30"`
	Address string             `json:"address"`
	Status  model.ClientStatus `json:"status" validate:"omitempty,oneof=ATIVO INATIVO"`
}

type clientService struct {
	clientRepo repository.ClientRepository
	saleRepo   repository.SaleRepository
	publisher  Publisher
	reports    cache.ReportCache
	log        *zap.Logger
}

// NewClientService wires the client store. Every mutation invalidates cached
// reports: the dashboard reads client rows.
func NewClientService(clientRepo repository.ClientRepository, saleRepo repository.SaleRepository,
	publisher Publisher, reports cache.ReportCache, log *zap.Logger) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		saleRepo:   saleRepo,
		publisher:  publisherOrNoop(publisher),
		reports:    cacheOrNoop(reports),
		log:        loggerOrNop(log),
	}
}

func (s *clientService) changed(ctx context.Context, action string, data map[string]interface{}, actor Actor, message string) {
	invalidateReports(ctx, s.reports, s.log)
	s.publisher.Publish(ws.Event{
		Type:    ws.TypeClientUpdate,
		Action:  action,
		Data:    data,
		User:    actor.Name,
		Message: message,
	})
}

// Create always starts the client as ATIVO.
func (s *clientService) Create(ctx context.Context, req *ClientRequest, actor Actor) (*model.Client, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	client := &model.Client{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Status:  model.ClientActive,
	}
	client.CreatedBy = actor.ID
	client.UpdatedBy = actor.ID
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.log.Info("client created", zap.String("client_id", client.ID.String()), zap.String("user_id", actor.ID))
	s.changed(ctx, ws.EventClientCreated, map[string]interface{}{"id": client.ID, "name": client.Name}, actor,
		fmt.Sprintf("%s registered client '%s'", actor.Name, client.Name))
	return client, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req *ClientRequest, actor Actor) (*model.Client, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":       req.Name,
		"phone":      req.Phone,
		"address":    req.Address,
		"updated_by": actor.ID,
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if err := s.clientRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	s.log.Info("client updated", zap.String("client_id", id.String()), zap.String("user_id", actor.ID))
	s.changed(ctx, ws.EventClientUpdated, map[string]interface{}{"id": id, "name": req.Name, "status": req.Status}, actor,
		fmt.Sprintf("%s updated client '%s'", actor.Name, req.Name))
	return s.Get(ctx, id)
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.clientRepo.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	s.log.Info("client deleted", zap.String("client_id", id.String()), zap.String("user_id", actor.ID))
	s.changed(ctx, ws.EventClientDeleted, map[string]interface{}{"id": id}, actor, "")
	return nil
}

func (s *clientService) List(ctx context.Context) ([]model.Client, error) {
	return s.clientRepo.FindAll(ctx)
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	return client, err
}

// LastPurchase returns nil when the client never bought anything.
func (s *clientService) LastPurchase(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	return s.saleRepo.LastSaleDate(ctx, id)
}

func (s *clientService) TotalSpent(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	return s.saleRepo.SumTotalByClient(ctx, id)
}
