package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdocs/doctrack-api/internal/models"
)

const documentColumns = `id, reference_id, attachment, file_category_id, remarks, file_date, priority, status, submitted_by_id, archived_at, created_at, updated_at`

// DocumentRepository persists documents, their assignatories, and the atomic
// status transitions that keep the ledger consistent with the status column.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document row.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Status == "" {
		doc.Status = models.DocumentStatusPending
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	const query = `INSERT INTO documents
	(id, reference_id, attachment, file_category_id, remarks, file_date, priority, status, submitted_by_id, archived_at, created_at, updated_at)
	VALUES (:id, :reference_id, :attachment, :file_category_id, :remarks, :file_date, :priority, :status, :submitted_by_id, :archived_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// GetByID fetches a document by identifier.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns documents matching the filter, newest first. Visibility fields
// on the filter are populated by the policy layer, not by callers directly.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 8)
	builder.WriteString(`SELECT d.` + strings.ReplaceAll(documentColumns, ", ", ", d.") + ` FROM documents d`)

	conditions := make([]string, 0, 6)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("d.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("d.priority = $%d", len(args)))
	}
	if filter.FileCategoryID != "" {
		args = append(args, filter.FileCategoryID)
		conditions = append(conditions, fmt.Sprintf("d.file_category_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(d.reference_id) LIKE $%d OR LOWER(COALESCE(d.remarks, '')) LIKE $%d)", len(args), len(args)))
	}
	if filter.Archived != nil {
		if *filter.Archived {
			conditions = append(conditions, "d.archived_at IS NOT NULL")
		} else {
			conditions = append(conditions, "d.archived_at IS NULL")
		}
	}
	if filter.SubmittedByID != "" {
		args = append(args, filter.SubmittedByID)
		conditions = append(conditions, fmt.Sprintf("d.submitted_by_id = $%d", len(args)))
	}
	if filter.OwnerOrAssigned != "" {
		args = append(args, filter.OwnerOrAssigned)
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(d.submitted_by_id = $%d OR EXISTS (SELECT 1 FROM document_assignatories a WHERE a.document_id = d.id AND a.user_id = $%d))", idx, idx))
	}
	if filter.AssignedUserID != "" {
		args = append(args, filter.AssignedUserID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM document_assignatories a WHERE a.document_id = d.id AND a.user_id = $%d)", len(args)))
	}
	if filter.DesignationID != "" {
		args = append(args, filter.DesignationID)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM users u WHERE u.id = d.submitted_by_id AND u.designation_id = $%d)", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY d.created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// TransitionParams groups the atomic status change and its ledger entry.
type TransitionParams struct {
	DocumentID string
	ToStatus   models.DocumentStatus
	Remarks    *string
	Entry      *models.HistoryEntry
}

// Transition performs the conditional status update and the history append in
// one transaction. The update only matches rows still PENDING; zero rows
// affected means the document already reached a terminal status and the whole
// transaction is rolled back, returning sql.ErrNoRows.
func (r *DocumentRepository) Transition(ctx context.Context, params TransitionParams) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	setParts := []string{"status = $2", "updated_at = $3"}
	args := []interface{}{params.DocumentID, params.ToStatus, now}
	if params.Remarks != nil {
		args = append(args, *params.Remarks)
		setParts = append(setParts, fmt.Sprintf("remarks = $%d", len(args)))
	}
	query := fmt.Sprintf("UPDATE documents SET %s WHERE id = $1 AND status = '%s'",
		strings.Join(setParts, ", "),
		models.DocumentStatusPending,
	)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	if err := insertHistoryEntry(ctx, tx, params.Entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// UpdateAttachment swaps the stored attachment URI and appends the ledger
// entry in the same transaction.
func (r *DocumentRepository) UpdateAttachment(ctx context.Context, id, attachment string, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attachment update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE documents SET attachment = $2, updated_at = $3 WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, id, attachment, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update attachment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check attachment rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	if err := insertHistoryEntry(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attachment update: %w", err)
	}
	return nil
}

// Delete removes a document row; history and assignatory rows cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateAssignatories inserts assignatory rows, silently skipping duplicates
// so a repeated forward to the same person stays idempotent.
func (r *DocumentRepository) CreateAssignatories(ctx context.Context, documentID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO document_assignatories (document_id, user_id, created_at)
	VALUES ($1, $2, $3) ON CONFLICT (document_id, user_id) DO NOTHING`
	now := time.Now().UTC()
	for _, userID := range userIDs {
		if _, err := r.db.ExecContext(ctx, query, documentID, userID, now); err != nil {
			return fmt.Errorf("create assignatory: %w", err)
		}
	}
	return nil
}

// ListAssignatoryIDs returns the user ids assigned to a document.
func (r *DocumentRepository) ListAssignatoryIDs(ctx context.Context, documentID string) ([]string, error) {
	const query = `SELECT user_id FROM document_assignatories WHERE document_id = $1 ORDER BY created_at`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, documentID); err != nil {
		return nil, fmt.Errorf("list assignatories: %w", err)
	}
	return ids, nil
}

// IsAssignatory reports whether the user was forwarded the document.
func (r *DocumentRepository) IsAssignatory(ctx context.Context, documentID, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM document_assignatories WHERE document_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, documentID, userID); err != nil {
		return false, fmt.Errorf("check assignatory: %w", err)
	}
	return exists, nil
}

// ListArchivable returns pending, unarchived documents without activity since
// the cutoff.
func (r *DocumentRepository) ListArchivable(ctx context.Context, cutoff time.Time, limit int) ([]models.Document, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + documentColumns + ` FROM documents
	WHERE archived_at IS NULL AND updated_at < $1
	ORDER BY updated_at ASC LIMIT $2`
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list archivable documents: %w", err)
	}
	return docs, nil
}

// MarkArchived sets the archival overlay timestamp. Archival is not a
// workflow stage; status is left untouched.
func (r *DocumentRepository) MarkArchived(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE documents SET archived_at = $2, updated_at = $2 WHERE id = $1 AND archived_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, ts)
	if err != nil {
		return fmt.Errorf("mark archived: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check archive rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
