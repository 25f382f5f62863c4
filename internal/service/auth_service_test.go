package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type authRepoStub struct {
	users         map[string]*models.User
	tokens        map[string]*models.RefreshToken
	revokedIDs    []string
	revokedUsers  []string
	lastLoginSet  bool
	auditLogs     []*models.AuditLog
	passwordSetTo string
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (r *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (r *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	r.lastLoginSet = true
	return nil
}

func (r *authRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	r.passwordSetTo = passwordHash
	return nil
}

func (r *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	r.revokedUsers = append(r.revokedUsers, userID)
	return nil
}

func (r *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := r.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (r *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	r.revokedIDs = append(r.revokedIDs, id)
	for _, token := range r.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (r *authRepoStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	r.auditLogs = append(r.auditLogs, log)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *authRepoStub) {
	t.Helper()
	repo := newAuthRepoStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	designation := "desig-1"
	repo.users["user-1"] = &models.User{
		ID:            "user-1",
		Email:         "dean@campus.edu",
		FullName:      "Dana Dean",
		Role:          models.RoleDean,
		DesignationID: &designation,
		PasswordHash:  string(hash),
		Active:        true,
	}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "doctrack-api",
	})
	return svc, repo
}

func TestAuthServiceLoginIssuesTokens(t *testing.T) {
	svc, repo := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@campus.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, models.RoleDean, resp.User.Role)
	require.NotEmpty(t, resp.User.Dashboard.DashboardPath)
	require.True(t, repo.lastLoginSet)
	require.Len(t, repo.auditLogs, 1)
	require.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, models.RoleDean, claims.Role)
	require.Equal(t, "desig-1", claims.DesignationID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@campus.edu",
		Password: "wrong",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, repo := authFixture(t)
	repo.users["user-1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@campus.edu",
		Password: "correct-horse",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	svc, repo := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@campus.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked and cannot be replayed.
	require.True(t, repo.tokens[login.RefreshToken].Revoked)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	svc, repo := authFixture(t)
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	svc, repo := authFixture(t)
	repo.tokens["other"] = &models.RefreshToken{
		ID:        "tok-2",
		UserID:    "someone-else",
		Token:     "other",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	err := svc.Logout(context.Background(), "other", "user-1", models.LoginRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	svc, repo := authFixture(t)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "battery-staple",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.passwordSetTo)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordSetTo), []byte("battery-staple")))
	require.Contains(t, repo.revokedUsers, "user-1")
}

func TestAuthServiceValidateTokenRejectsForgedSignature(t *testing.T) {
	svc, _ := authFixture(t)
	other := NewAuthService(newAuthRepoStub(), nil, nil, AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "dean@campus.edu",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
