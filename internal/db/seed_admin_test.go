package db

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/repo/memory"
	"github.com/geocoder89/tenanthub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cfg := config.Config{AdminEmail: "Root@Example.COM", AdminPassword: "Secret123!"}

	created, err := EnsureAdminUser(ctx, store, cfg)
	require.NoError(t, err)
	assert.True(t, created)

	u, err := store.GetUserByEmail(ctx, "Root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, user.RoleRegular, u.Role)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.CompanyID)
	assert.NoError(t, security.CheckPassword(u.PasswordHash, "Secret123!"))

	created, err = EnsureAdminUser(ctx, store, cfg)
	require.NoError(t, err)
	assert.False(t, created, "second run must not create another user")
}

func TestEnsureAdminUserSkipsWithoutCredentials(t *testing.T) {
	created, err := EnsureAdminUser(context.Background(), memory.NewStore(), config.Config{AdminEmail: "root@x.com"})
	require.NoError(t, err)
	assert.False(t, created)
}

// lostRaceStore misses the lookup, then loses the insert to another replica.
type lostRaceStore struct {
	repo.UserStore
	createErr error
}

func (s lostRaceStore) GetUserByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func (s lostRaceStore) CreateUser(context.Context, user.User) error {
	return s.createErr
}

func TestEnsureAdminUserConcurrentSeed(t *testing.T) {
	cfg := config.Config{AdminEmail: "root@x.com", AdminPassword: "Secret123!"}

	for _, taken := range []error{user.ErrEmailTaken, user.ErrUsernameTaken} {
		created, err := EnsureAdminUser(context.Background(), lostRaceStore{createErr: taken}, cfg)
		require.NoError(t, err)
		assert.False(t, created)
	}

	down := errors.New("db down")
	_, err := EnsureAdminUser(context.Background(), lostRaceStore{createErr: down}, cfg)
	assert.ErrorIs(t, err, down)
}

func TestEnsureAdminUserRole(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	created, err := EnsureAdminUser(ctx, store, config.Config{
		AdminEmail: "root@x.com", AdminPassword: "Secret123!", AdminRole: "admin",
	})
	require.NoError(t, err)
	require.True(t, created)

	u, err := store.GetUserByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)

	_, err = EnsureAdminUser(ctx, memory.NewStore(), config.Config{
		AdminEmail: "root@x.com", AdminPassword: "Secret123!", AdminRole: "owner",
	})
	assert.ErrorIs(t, err, user.ErrUnknownRole)
}
