package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/doctrack-api/internal/models"
)

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "designation_id", "active", "last_login", "created_at", "updated_at"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.DesignationID, u.Active, u.LastLogin, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("dean@campus.edu").
		WillReturnRows(userRows(models.User{
			ID:     "user-1",
			Email:  "dean@campus.edu",
			Role:   models.RoleDean,
			Active: true,
		}))

	user, err := repo.FindByEmail(context.Background(), "dean@campus.edu")
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, models.RoleDean, user.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("ghost@campus.edu").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@campus.edu")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindActiveByIDsFiltersRoles(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("id IN ($1, $2) AND active = true AND role IN ($3)")).
		WithArgs("user-1", "user-2", string(models.RoleVPAA)).
		WillReturnRows(userRows(models.User{ID: "user-1", Role: models.RoleVPAA, Active: true}))

	users, err := repo.FindActiveByIDs(context.Background(), []string{"user-1", "user-2"}, []models.UserRole{models.RoleVPAA})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "user-1", users[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindActiveByIDsEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	users, err := repo.FindActiveByIDs(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Nil(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListCountsAndPaginates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	role := models.RoleInstructor
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs(string(role)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 20 OFFSET 20")).
		WithArgs(string(role)).
		WillReturnRows(userRows(models.User{ID: "user-1", Role: role, Active: true}))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Page: 2})
	require.NoError(t, err)
	require.Equal(t, 42, total)
	require.Len(t, users, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:        "new@campus.edu",
		PasswordHash: "hash",
		FullName:     "New User",
		Role:         models.RoleInstructor,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	require.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeUserRefreshTokens(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE user_id = $1 AND revoked = false")).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.RevokeUserRefreshTokens(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAuditLogDefaultsTimestamps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := "user-1"
	log := &models.AuditLog{
		UserID:   &userID,
		Action:   models.AuditActionLogin,
		Resource: "auth",
	}
	require.NoError(t, repo.CreateAuditLog(context.Background(), log))
	require.NotEmpty(t, log.ID)
	require.WithinDuration(t, time.Now().UTC(), log.CreatedAt, time.Minute)
	require.NoError(t, mock.ExpectationsWereMet())
}
