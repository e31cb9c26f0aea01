package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	usersTable := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	profilesTable := `
CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  avatar_url TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(usersTable).Error)
	require.NoError(t, conn.Exec(profilesTable).Error)
	return conn
}

func seedUser(t *testing.T, repo *Repository, role enums.UserRole) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        fmt.Sprintf("users_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func TestServiceUpdateProfilePartial(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Email:        fmt.Sprintf("profile_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Old",
		LastName:     "Name",
	})
	require.NoError(t, err)

	first := "New"
	phone := "081234"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{FirstName: &first, Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "Name", updated.LastName)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, phone, *updated.Phone)
}

func TestServiceUpdateProfileCreatesMissingRow(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	// user predating profiles: raw insert with no profile row
	bare := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("legacy_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
	}
	require.NoError(t, conn.Create(bare).Error)

	first := "Fresh"
	updated, err := svc.UpdateProfile(ctx, bare.ID, UpdateProfileInput{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Fresh", updated.FirstName)
	assert.Equal(t, enums.UserRoleCustomer, updated.Role)
	assert.Equal(t, enums.AccountStatusActive, updated.Status)
}

func TestServiceUpdateRoleStatus(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	user := seedUser(t, repo, enums.UserRoleCustomer)

	role := enums.UserRoleModerator
	status := enums.AccountStatusSuspended
	updated, err := svc.UpdateRoleStatus(ctx, UpdateRoleStatusInput{UserID: user.ID, Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleModerator, updated.Role)
	assert.Equal(t, enums.AccountStatusSuspended, updated.Status)

	_, err = svc.UpdateRoleStatus(ctx, UpdateRoleStatusInput{UserID: user.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRepositoryAdminListFilters(t *testing.T) {
	conn := setupUsersTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	customer := seedUser(t, repo, enums.UserRoleCustomer)
	admin := seedUser(t, repo, enums.UserRoleAdmin)

	role := enums.UserRoleAdmin
	result, err := svc.AdminList(ctx, ListInput{Role: &role, Pagination: pagination.Params{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, admin.ID, result.Users[0].ID)

	byEmail, err := svc.AdminList(ctx, ListInput{Query: customer.Email})
	require.NoError(t, err)
	require.Len(t, byEmail.Users, 1)
	assert.Equal(t, customer.ID, byEmail.Users[0].ID)
	require.NotNil(t, byEmail.Users[0].Profile)
}
