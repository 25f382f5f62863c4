package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	// Bind as postgres so sqlx rewrites placeholders to $n like lib/pq does.
	return sqlx.NewDb(db, "postgres"), mock, func() { db.Close() }
}

func documentRows(id string, status models.DocumentStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "reference_id", "attachment", "file_category_id", "remarks", "file_date", "priority", "status", "submitted_by_id", "archived_at", "created_at", "updated_at"}).
		AddRow(id, "DOC-MEMO-A1B2", "uploads/memo.pdf", "cat-1", nil, now, "HIGH", string(status), "inst-1", nil, now, now)
}

func TestDocumentRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := &models.Document{
		ReferenceID:    "DOC-MEMO-A1B2",
		Attachment:     "uploads/memo.pdf",
		FileCategoryID: "cat-1",
		FileDate:       time.Now(),
		Priority:       models.PriorityHigh,
		SubmittedByID:  "inst-1",
	}
	require.NoError(t, repo.Create(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	require.Equal(t, models.DocumentStatusPending, doc.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, reference_id, attachment")).
		WithArgs(doc.ID).
		WillReturnRows(documentRows(doc.ID, models.DocumentStatusPending))

	found, err := repo.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Equal(t, doc.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryTransitionCommitsUpdateAndLedger(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1 AND status = 'PENDING'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	performer := "vpaa-1"
	err := repo.Transition(context.Background(), TransitionParams{
		DocumentID: "doc-1",
		ToStatus:   models.DocumentStatusApproved,
		Entry: &models.HistoryEntry{
			DocumentID:    "doc-1",
			Action:        models.HistoryActionApproved,
			Status:        models.DocumentStatusApproved,
			Stage:         models.StageVPAA,
			Summary:       "Approved by Carla Lim",
			PerformedByID: &performer,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryTransitionLosesRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectBegin()
	// Another transition already flipped the status: zero rows match the
	// PENDING guard, the ledger is never touched, and everything rolls back.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Transition(context.Background(), TransitionParams{
		DocumentID: "doc-1",
		ToStatus:   models.DocumentStatusRejected,
		Entry:      &models.HistoryEntry{DocumentID: "doc-1"},
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryTransitionWithRemarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status = $2, updated_at = $3, remarks = $4 WHERE id = $1 AND status = 'PENDING'")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_history")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	remarks := "Looks complete"
	err := repo.Transition(context.Background(), TransitionParams{
		DocumentID: "doc-1",
		ToStatus:   models.DocumentStatusApproved,
		Remarks:    &remarks,
		Entry:      &models.HistoryEntry{DocumentID: "doc-1"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryCreateAssignatoriesSkipsDuplicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_assignatories")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// Conflict rows report zero affected; the insert still succeeds.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO document_assignatories")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CreateAssignatories(context.Background(), "doc-1", []string{"vpaa-1", "vpaa-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryMarkArchived(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET archived_at")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkArchived(context.Background(), "doc-1", time.Now()))
	require.NoError(t, mock.ExpectationsWereMet())
}
