package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funkoshop/internal/domain"
	"funkoshop/internal/repos"
	"funkoshop/internal/services"
)

func newUsers(t *testing.T) (*services.AuthService, *services.UserService) {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	users := repos.NewUserRepo(db)
	return &services.AuthService{Users: users}, &services.UserService{Users: users}
}

func ash() map[string]any {
	return map[string]any{"name": "Ash", "lastname": "Ketchum", "email": "ash@example.com", "password": "pikachu"}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newUsers(t)
	ctx := context.Background()

	u, err := auth.Register(ctx, ash())
	require.NoError(t, err)
	assert.Equal(t, "mixto", u.RoleName)
	assert.True(t, strings.HasPrefix(u.Hash, "$2"), "stored as a bcrypt hash")

	_, err = auth.Register(ctx, ash())
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = auth.Login(ctx, "sid-1", "ash@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login(ctx, "sid-1", "misty@example.com", "pikachu")
	assert.ErrorIs(t, err, services.ErrBadCreds)

	logged, err := auth.Login(ctx, "sid-1", "ash@example.com", "pikachu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	cur, err := auth.CurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, cur)

	require.NoError(t, auth.Logout(ctx, "sid-1"))
	cur, err = auth.CurrentUser(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestRegister_Validation(t *testing.T) {
	auth, _ := newUsers(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, map[string]any{"email": "ash@example.com"})
	assert.Equal(t, "Missing required fields: name, lastname, password", domain.Message(err))

	raw := ash()
	raw["name"] = "Ashhhhhhhhhhhhhhhhh"
	_, err = auth.Register(ctx, raw)
	assert.Equal(t, "Name must be at most 16 characters", domain.Message(err))

	raw = ash()
	raw["email"] = "ash.example.com"
	_, err = auth.Register(ctx, raw)
	assert.Equal(t, "Email format is not valid", domain.Message(err))
}

func TestUserAdminFlow(t *testing.T) {
	_, users := newUsers(t)
	ctx := context.Background()

	roles, err := users.Roles(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, roles)

	raw := ash()
	raw["role_id"] = "1"
	u, err := users.Create(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.RoleName)

	got, err := users.Update(ctx, u.ID, map[string]any{"lastname": "K.", "role_id": ""})
	require.NoError(t, err)
	assert.Equal(t, "K.", got.Lastname)
	assert.Nil(t, got.RoleID)

	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, users.Delete(ctx, u.ID))
	assert.True(t, errors.Is(users.Delete(ctx, u.ID), domain.ErrNotFound))
}
