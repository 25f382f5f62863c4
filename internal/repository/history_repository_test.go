package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/models"
)

func historyRows(entries ...models.HistoryEntry) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "document_id", "action", "status", "stage", "summary", "details", "rejection_reason", "rejection_details", "performed_by_id", "created_at"})
	for _, e := range entries {
		rows.AddRow(e.ID, e.DocumentID, string(e.Action), string(e.Status), string(e.Stage), e.Summary, e.Details, e.RejectionReason, e.RejectionDetails, e.PerformedByID, e.CreatedAt)
	}
	return rows
}

func TestHistoryRepositoryAppendGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.HistoryEntry{
		DocumentID: "doc-1",
		Action:     models.HistoryActionSubmitted,
		Status:     models.DocumentStatusPending,
		Stage:      models.StageInstructor,
		Summary:    "Submitted by Ana Cruz",
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryListByDocumentOrdersNewestFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("doc-1").
		WillReturnRows(historyRows(
			models.HistoryEntry{ID: "h2", DocumentID: "doc-1", Action: models.HistoryActionForwarded, Status: models.DocumentStatusPending, Stage: models.StageDean, CreatedAt: now},
			models.HistoryEntry{ID: "h1", DocumentID: "doc-1", Action: models.HistoryActionSubmitted, Status: models.DocumentStatusPending, Stage: models.StageInstructor, CreatedAt: now.Add(-time.Hour)},
		))

	entries, err := repo.ListByDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "h2", entries[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryLatestByDocuments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (document_id)")).
		WillReturnRows(historyRows(
			models.HistoryEntry{ID: "h1", DocumentID: "doc-1", Action: models.HistoryActionApproved, Status: models.DocumentStatusApproved, Stage: models.StageVPAA, CreatedAt: now},
			models.HistoryEntry{ID: "h2", DocumentID: "doc-2", Action: models.HistoryActionSubmitted, Status: models.DocumentStatusPending, Stage: models.StageInstructor, CreatedAt: now},
		))

	latest, err := repo.LatestByDocuments(context.Background(), []string{"doc-1", "doc-2"})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, models.StageVPAA, latest["doc-1"].Stage)
	require.Equal(t, models.StageInstructor, latest["doc-2"].Stage)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRepositoryLatestByDocumentsEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	latest, err := repo.LatestByDocuments(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, latest)
}

func TestHistoryRepositoryListPerformerIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT performed_by_id")).
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"performed_by_id"}).AddRow("inst-1").AddRow("dean-1"))

	ids, err := repo.ListPerformerIDs(context.Background(), "doc-1")
	require.NoError(t, err)
	require.Equal(t, []string{"inst-1", "dean-1"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
