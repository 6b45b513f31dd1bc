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

type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID, actor Actor) error
	List(ctx context.Context) ([]repository.CategoryWithCount, error)
}

type CategoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"max=20"`
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	publisher    Publisher
	log          *zap.Logger
}

func NewCategoryService(categoryRepo repository.CategoryRepository, publisher Publisher, log *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		publisher:    publisherOrNoop(publisher),
		log:          loggerOrNop(log),
	}
}

func (s *categoryService) publish(action string, id uuid.UUID, actor Actor) {
	s.log.Info(action, zap.String("category_id", id.String()), zap.String("user_id", actor.ID))
	s.publisher.Publish(ws.Event{
		Type:   ws.TypeCatalogUpdate,
		Action: action,
		Data:   map[string]interface{}{"id": id},
		User:   actor.Name,
	})
}

func (s *categoryService) Create(ctx context.Context, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	category := &model.Category{Name: req.Name, Color: req.Color}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ws.EventCategoryCreated, category.ID, actor)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	err := s.categoryRepo.Update(ctx, id, map[string]interface{}{
		"name":       req.Name,
		"color":      req.Color,
		"updated_by": actor.ID,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	s.publish(ws.EventCategoryUpdated, id, actor)
	return s.categoryRepo.FindByID(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.categoryRepo.Delete(ctx, id, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.publish(ws.EventCategoryDeleted, id, actor)
	return nil
}

func (s *categoryService) List(ctx context.Context) ([]repository.CategoryWithCount, error) {
	return s.categoryRepo.FindAllWithCount(ctx)
}
