package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusdocs/doctrack-api/internal/models"
)

// DashboardRepository aggregates document counts for dashboard views.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Summary computes per-status and per-priority counts within the scope the
// visibility layer resolved for the viewer.
func (r *DashboardRepository) Summary(ctx context.Context, scope models.DashboardScope) (*models.DashboardSummary, error) {
	query := `SELECT
	COUNT(*) AS total,
	COUNT(*) FILTER (WHERE d.status = 'PENDING') AS pending,
	COUNT(*) FILTER (WHERE d.status = 'APPROVED') AS approved,
	COUNT(*) FILTER (WHERE d.status = 'REJECTED') AS rejected,
	COUNT(*) FILTER (WHERE d.archived_at IS NOT NULL) AS archived,
	COUNT(*) FILTER (WHERE d.priority = 'HIGH') AS high_priority,
	COUNT(*) FILTER (WHERE d.priority = 'MEDIUM') AS medium_priority,
	COUNT(*) FILTER (WHERE d.priority = 'LOW') AS low_priority
	FROM documents d`

	var args []interface{}
	switch {
	case scope.SubmittedByID != "":
		query += ` WHERE d.submitted_by_id = $1`
		args = append(args, scope.SubmittedByID)
	case scope.DesignationID != "":
		query += ` WHERE EXISTS (SELECT 1 FROM users u WHERE u.id = d.submitted_by_id AND u.designation_id = $1)`
		args = append(args, scope.DesignationID)
	}

	var summary models.DashboardSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &summary, nil
}
