package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdocs/doctrack-api/internal/models"
)

// CategoryRepository persists file categories and designations.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.FileCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	const query = `INSERT INTO file_categories (id, name, prefix, designation_id, created_at, updated_at)
	VALUES (:id, :name, :prefix, :designation_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID fetches a category.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.FileCategory, error) {
	const query = `SELECT id, name, prefix, designation_id, created_at, updated_at FROM file_categories WHERE id = $1`
	var category models.FileCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.FileCategory, error) {
	const query = `SELECT id, name, prefix, designation_id, created_at, updated_at FROM file_categories ORDER BY name`
	var categories []models.FileCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DesignationName resolves the designation name linked to a category, or an
// empty string when the category has no designation.
func (r *CategoryRepository) DesignationName(ctx context.Context, categoryID string) (string, error) {
	const query = `SELECT COALESCE(ds.name, '') FROM file_categories fc
	LEFT JOIN designations ds ON ds.id = fc.designation_id
	WHERE fc.id = $1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, categoryID); err != nil {
		return "", fmt.Errorf("resolve category designation: %w", err)
	}
	return name, nil
}

// ListDesignations returns all designations ordered by name.
func (r *CategoryRepository) ListDesignations(ctx context.Context) ([]models.Designation, error) {
	const query = `SELECT id, name, created_at FROM designations ORDER BY name`
	var designations []models.Designation
	if err := r.db.SelectContext(ctx, &designations, query); err != nil {
		return nil, fmt.Errorf("list designations: %w", err)
	}
	return designations, nil
}

// CreateDesignation inserts a new designation.
func (r *CategoryRepository) CreateDesignation(ctx context.Context, designation *models.Designation) error {
	if designation.ID == "" {
		designation.ID = uuid.NewString()
	}
	if designation.CreatedAt.IsZero() {
		designation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO designations (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, designation); err != nil {
		return fmt.Errorf("create designation: %w", err)
	}
	return nil
}
