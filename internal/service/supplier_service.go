package service

import (
	"context"
	"errors"

	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/internal/ws"
	"cashflow-api/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SupplierService interface {
	Create(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error)
	Update(ctx context.Context, id uuid.UUID, req *SupplierUpdateRequest, actor Actor) (*repository.SupplierWithCount, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	ListAll(ctx context.Context) ([]model.Supplier, error)
	Search(ctx context.Context, term string) ([]repository.SupplierWithCount, error)
	Get(ctx context.Context, id uuid.UUID) (*repository.SupplierWithCount, error)
}

type SupplierRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	CNPJ        string `json:"cnpj" validate:"max=20"`
	Description string `json:"description"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=30"`
	Street      string `json:"street"`
	Number      string `json:"number" validate:"max=20"`
	Complement  string `json:"complement"`
	District    string `json:"district"`
	City        string `json:"city"`
	State       string `json:"state" validate:"omitempty,len=2"`
	ZipCode     string `json:"zip_code" validate:"max=10"`
}

// SupplierUpdateRequest is partial: nil fields are left unchanged.
type SupplierUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	CNPJ        *string `json:"cnpj" validate:"omitempty,max=20"`
	Description *string `json:"description"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=30"`
	Street      *string `json:"street"`
	Number      *string `json:"number" validate:"omitempty,max=20"`
	Complement  *string `json:"complement"`
	District    *string `json:"district"`
	City        *string `json:"city"`
	State       *string `json:"state" validate:"omitempty,len=2"`
	ZipCode     *string `json:"zip_code" validate:"omitempty,max=10"`
}

func (r *SupplierUpdateRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("name", r.Name)
	set("cnpj", r.CNPJ)
	set("description", r.Description)
	set("email", r.Email)
	set("phone", r.Phone)
	set("street", r.Street)
	set("number", r.Number)
	set("complement", r.Complement)
	set("district", r.District)
	set("city", r.City)
	set("state", r.State)
	set("zip_code", r.ZipCode)
	return fields
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	publisher    Publisher
	log          *zap.Logger
}

func NewSupplierService(supplierRepo repository.SupplierRepository, publisher Publisher, log *zap.Logger) SupplierService {
	return &supplierService{
		supplierRepo: supplierRepo,
		publisher:    publisherOrNoop(publisher),
		log:          loggerOrNop(log),
	}
}

func (s *supplierService) publish(action string, id uuid.UUID, actor Actor) {
	s.log.Info(action, zap.String("supplier_id", id.String()), zap.String("user_id", actor.ID))
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeCatalogUpdate,
		Action: action,
		Data:   map[string]interface{}{"id": id},
		User:   actor.Name,
	})
}

func (s *supplierService) Create(ctx context.Context, req *SupplierRequest, actor Actor) (*model.Supplier, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	supplier := &model.Supplier{
		Name:        req.Name,
		CNPJ:        req.CNPJ,
		Description: req.Description,
		Email:       req.Email,
		Phone:       req.Phone,
		Street:      req.Street,
		Number:      req.Number,
		Complement:  req.Complement,
		District:    req.District,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
	}
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	s.publish(ws.EventSupplierCreated, supplier.ID, actor)
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req *SupplierUpdateRequest, actor Actor) (*repository.SupplierWithCount, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	fields := req.fields()
	fields["updated_by"] = actor.ID
	if err := s.supplierRepo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSupplierNotFound
		}
		return nil, err
	}
	s.publish(ws.EventSupplierUpdated, id, actor)
	return s.Get(ctx, id)
}

func (s *supplierService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.supplierRepo.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSupplierNotFound
		}
		return err
	}
	s.publish(ws.EventSupplierDeleted, id, actor)
	return nil
}

func (s *supplierService) ListAll(ctx context.Context) ([]model.Supplier, error) {
	return s.supplierRepo.FindAll(ctx)
}

func (s *supplierService) Search(ctx context.Context, term string) ([]repository.SupplierWithCount, error) {
	return s.supplierRepo.Search(ctx, term)
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*repository.SupplierWithCount, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSupplierNotFound
	}
	return supplier, err
}
