package auth

import (
	"context"
	"crypto/hmac"
	"errors"
	"time"

	"github.com/geocoder89/tenanthub/internal/domain/user"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token revoked")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match stored hash")
)

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

// RotateFunc inspects the locked current row and returns its replacement.
// Returning an error aborts the rotation and leaves the row untouched.
type RotateFunc func(current RefreshToken) (RefreshToken, error)

type RefreshTokenStore interface {
	Create(ctx context.Context, row RefreshToken) error
	// Rotate locks the row with id, calls fn, then revokes the row
	// (replaced_by = next.ID) and inserts next, atomically.
	Rotate(ctx context.Context, id string, fn RotateFunc) error
	// PurgeStale deletes rows that expired, or were revoked, before cutoff.
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// CheckPresented validates a stored row against the raw token presented by
// the client.
func (m *Manager) CheckPresented(row RefreshToken, raw string) error {
	if row.RevokedAt != nil {
		return ErrRefreshTokenRevoked
	}

	if m.now().After(row.ExpiresAt) {
		return ErrRefreshTokenExpired
	}

	// prevents token substitution
	if !hmac.Equal([]byte(row.TokenHash), []byte(m.HashRefreshToken(raw))) {
		return ErrRefreshTokenMismatch
	}

	return nil
}

// NewRefreshRecord signs a refresh token for userID and returns it with the
// row that should be stored for it.
func (m *Manager) NewRefreshRecord(userID string, role user.Role) (string, RefreshToken, error) {
	raw, jti, expiresAt, err := m.GenerateRefreshToken(userID, role)
	if err != nil {
		return "", RefreshToken{}, err
	}

	return raw, RefreshToken{
		ID:        jti,
		UserID:    userID,
		TokenHash: m.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: m.now(),
	}, nil
}
