package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type categoryAdminStoreStub struct {
	categories   []models.FileCategory
	designations []models.Designation
}

func (s *categoryAdminStoreStub) Create(ctx context.Context, category *models.FileCategory) error {
	category.ID = "cat-new"
	s.categories = append(s.categories, *category)
	return nil
}

func (s *categoryAdminStoreStub) GetByID(ctx context.Context, id string) (*models.FileCategory, error) {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *categoryAdminStoreStub) List(ctx context.Context) ([]models.FileCategory, error) {
	return s.categories, nil
}

func (s *categoryAdminStoreStub) ListDesignations(ctx context.Context) ([]models.Designation, error) {
	return s.designations, nil
}

func (s *categoryAdminStoreStub) CreateDesignation(ctx context.Context, designation *models.Designation) error {
	designation.ID = "desig-new"
	s.designations = append(s.designations, *designation)
	return nil
}

func TestCategoryServiceCreateNormalizesPrefix(t *testing.T) {
	store := &categoryAdminStoreStub{}
	svc := NewCategoryService(store, nil, nil)

	category, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name:          "  Travel Order ",
		Prefix:        "to",
		DesignationID: "desig-1",
	})
	require.NoError(t, err)
	require.Equal(t, "Travel Order", category.Name)
	require.Equal(t, "TO", category.Prefix)
	require.NotNil(t, category.DesignationID)
	require.Equal(t, "desig-1", *category.DesignationID)
}

func TestCategoryServiceCreateRequiresPrefix(t *testing.T) {
	svc := NewCategoryService(&categoryAdminStoreStub{}, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Memo"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceGetNotFound(t *testing.T) {
	svc := NewCategoryService(&categoryAdminStoreStub{}, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceCreateDesignation(t *testing.T) {
	store := &categoryAdminStoreStub{}
	svc := NewCategoryService(store, nil, nil)

	designation, err := svc.CreateDesignation(context.Background(), dto.CreateDesignationRequest{
		Name: " College of Engineering ",
	})
	require.NoError(t, err)
	require.Equal(t, "College of Engineering", designation.Name)
	require.Len(t, store.designations, 1)
}
