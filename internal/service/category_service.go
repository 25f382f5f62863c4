package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type categoryAdminStore interface {
	Create(ctx context.Context, category *models.FileCategory) error
	GetByID(ctx context.Context, id string) (*models.FileCategory, error)
	List(ctx context.Context) ([]models.FileCategory, error)
	ListDesignations(ctx context.Context) ([]models.Designation, error)
	CreateDesignation(ctx context.Context, designation *models.Designation) error
}

// CategoryService manages file categories and designations.
type CategoryService struct {
	repo      categoryAdminStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo categoryAdminStore, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, validator: validate, logger: logger}
}

// List returns all file categories.
func (s *CategoryService) List(ctx context.Context) ([]models.FileCategory, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Get returns one category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.FileCategory, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

// Create registers a new file category.
func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.FileCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}
	category := &models.FileCategory{
		Name:   strings.TrimSpace(req.Name),
		Prefix: strings.ToUpper(strings.TrimSpace(req.Prefix)),
	}
	if req.DesignationID != "" {
		designation := req.DesignationID
		category.DesignationID = &designation
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	return category, nil
}

// ListDesignations returns every designation.
func (s *CategoryService) ListDesignations(ctx context.Context) ([]models.Designation, error) {
	designations, err := s.repo.ListDesignations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list designations")
	}
	return designations, nil
}

// CreateDesignation registers a new department or office.
func (s *CategoryService) CreateDesignation(ctx context.Context, req dto.CreateDesignationRequest) (*models.Designation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid designation payload")
	}
	designation := &models.Designation{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateDesignation(ctx, designation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create designation")
	}
	return designation, nil
}
