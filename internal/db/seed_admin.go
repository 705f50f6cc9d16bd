package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/security"
	"github.com/google/uuid"
)

// EnsureAdminUser creates the staff superuser from config when it does not
// exist yet. It reports whether a user was created. Replicas racing to seed
// the same account are fine: the losers see a unique violation and report
// false.
func EnsureAdminUser(ctx context.Context, users repo.UserStore, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	role := user.RoleRegular
	if cfg.AdminRole != "" {
		parsed, err := user.ParseRole(cfg.AdminRole)
		if err != nil {
			return false, fmt.Errorf("ADMIN_ROLE: %w", err)
		}
		role = parsed
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	_, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) || errors.Is(err, user.ErrUsernameTaken) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
