package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type userStoreStub struct {
	users      map[string]*models.User
	lastFilter models.UserFilter
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]*models.User)}
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.lastFilter = filter
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, len(out), nil
}

func (s *userStoreStub) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	s.users[user.ID] = user
	return nil
}

func (s *userStoreStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	store := newUserStoreStub()
	svc := NewUserService(store, nil, nil)

	user, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:         "  New.Dean@Campus.EDU ",
		Password:      "secret-1",
		FullName:      "New Dean",
		Role:          models.RoleDean,
		DesignationID: "desig-1",
	})
	require.NoError(t, err)
	require.Equal(t, "new.dean@campus.edu", user.Email)
	require.True(t, user.Active)
	require.NotNil(t, user.DesignationID)
	require.Equal(t, "desig-1", *user.DesignationID)
	require.NotEqual(t, "secret-1", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-1")))
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	store := newUserStoreStub()
	store.users["user-1"] = &models.User{ID: "user-1", Email: "taken@campus.edu"}
	svc := NewUserService(store, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "TAKEN@campus.edu",
		Password: "secret-1",
		FullName: "Someone",
		Role:     models.RoleInstructor,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceCreateInvalidPayload(t *testing.T) {
	svc := NewUserService(newUserStoreStub(), nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateUserRequest{
		Email:    "not-an-email",
		Password: "x",
		FullName: "",
		Role:     models.RoleInstructor,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUserServiceListDefaultsPagination(t *testing.T) {
	store := newUserStoreStub()
	svc := NewUserService(store, nil, nil)

	_, pagination, err := svc.List(context.Background(), models.UserFilter{PageSize: 500})
	require.NoError(t, err)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 20, pagination.PageSize)
	require.Equal(t, 20, store.lastFilter.PageSize)
}

func TestUserServiceGetNotFound(t *testing.T) {
	svc := NewUserService(newUserStoreStub(), nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
