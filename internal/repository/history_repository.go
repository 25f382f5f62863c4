package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusdocs/doctrack-api/internal/models"
)

const historyColumns = `id, document_id, action, status, stage, summary, details, rejection_reason, rejection_details, performed_by_id, created_at`

// HistoryRepository reads and appends the immutable per-document ledger.
// There are no update or delete operations on purpose.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// insertHistoryEntry appends one ledger row using whichever executor the
// caller holds, so transitions can include the append in their transaction.
func insertHistoryEntry(ctx context.Context, ext sqlx.ExtContext, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO document_history
	(id, document_id, action, status, stage, summary, details, rejection_reason, rejection_details, performed_by_id, created_at)
	VALUES (:id, :document_id, :action, :status, :stage, :summary, :details, :rejection_reason, :rejection_details, :performed_by_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, entry); err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// Append writes a new ledger entry outside of any transition transaction.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	return insertHistoryEntry(ctx, r.db, entry)
}

// ListByDocument returns a document's ledger, most recent first.
func (r *HistoryRepository) ListByDocument(ctx context.Context, documentID string) ([]models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM document_history WHERE document_id = $1 ORDER BY created_at DESC`
	var entries []models.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, documentID); err != nil {
		return nil, fmt.Errorf("list document history: %w", err)
	}
	return entries, nil
}

// Latest returns the most recent ledger entry for a document.
func (r *HistoryRepository) Latest(ctx context.Context, documentID string) (*models.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM document_history WHERE document_id = $1 ORDER BY created_at DESC LIMIT 1`
	var entry models.HistoryEntry
	if err := r.db.GetContext(ctx, &entry, query, documentID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LatestByDocuments resolves the most recent entry per document in one query,
// used by list projections to derive current stages without N+1 reads.
func (r *HistoryRepository) LatestByDocuments(ctx context.Context, documentIDs []string) (map[string]models.HistoryEntry, error) {
	if len(documentIDs) == 0 {
		return map[string]models.HistoryEntry{}, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT ON (document_id) `+historyColumns+`
	FROM document_history WHERE document_id IN (?)
	ORDER BY document_id, created_at DESC`, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("build latest history query: %w", err)
	}
	query = r.db.Rebind(query)
	var entries []models.HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("latest history by documents: %w", err)
	}
	result := make(map[string]models.HistoryEntry, len(entries))
	for _, entry := range entries {
		result[entry.DocumentID] = entry
	}
	return result, nil
}

// ListPerformerIDs returns the distinct users who acted on a document.
func (r *HistoryRepository) ListPerformerIDs(ctx context.Context, documentID string) ([]string, error) {
	const query = `SELECT DISTINCT performed_by_id FROM document_history
	WHERE document_id = $1 AND performed_by_id IS NOT NULL`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, documentID); err != nil {
		return nil, fmt.Errorf("list history performers: %w", err)
	}
	return ids, nil
}
