package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/tenanthub/internal/domain/user"
)

func newTestManager(now time.Time) *Manager {
	m := NewManager("test-secret", 5*time.Minute, 24*time.Hour)
	m.now = func() time.Time { return now }
	return m
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	m := newTestManager(now)

	raw, err := m.GenerateAccessToken("u-1", user.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != user.RoleAdmin || claims.TokenType != TokenTypeAccess {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := m.VerifyRefreshToken(raw); !errors.Is(err, ErrInvalidTokenType) {
		t.Fatalf("access as refresh = %v, want ErrInvalidTokenType", err)
	}

	if _, err := m.Verify(raw); err != nil {
		t.Fatalf("verify any: %v", err)
	}
}

func TestExpiredAndForeignTokensRejected(t *testing.T) {
	issued := time.Now().UTC().Add(-time.Hour)
	m := newTestManager(issued)

	raw, err := m.GenerateAccessToken("u-1", user.RoleRegular)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	m.now = func() time.Time { return issued.Add(10 * time.Minute) }
	if _, err := m.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired = %v, want ErrInvalidToken", err)
	}

	other := NewManager("other-secret", time.Minute, time.Hour)
	fresh, _ := other.GenerateAccessToken("u-1", user.RoleRegular)
	if _, err := newTestManager(time.Now().UTC()).Verify(fresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign = %v, want ErrInvalidToken", err)
	}

	if _, err := m.Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshRecordAndCheckPresented(t *testing.T) {
	now := time.Now().UTC()
	m := newTestManager(now)

	raw, row, err := m.NewRefreshRecord("u-1", user.RoleAdmin)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	claims, err := m.VerifyRefreshToken(raw)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if claims.JTI != row.ID || row.UserID != "u-1" {
		t.Fatalf("row %+v does not match claims %+v", row, claims)
	}
	if row.TokenHash == raw || row.TokenHash != m.HashRefreshToken(raw) {
		t.Fatalf("token hash not derived from raw token")
	}

	if err := m.CheckPresented(row, raw); err != nil {
		t.Fatalf("check: %v", err)
	}

	otherRaw, _, _ := m.NewRefreshRecord("u-1", user.RoleAdmin)
	if err := m.CheckPresented(row, otherRaw); !errors.Is(err, ErrRefreshTokenMismatch) {
		t.Fatalf("substituted = %v", err)
	}

	revoked := row
	revokedAt := now
	revoked.RevokedAt = &revokedAt
	if err := m.CheckPresented(revoked, raw); !errors.Is(err, ErrRefreshTokenRevoked) {
		t.Fatalf("revoked = %v", err)
	}

	m.now = func() time.Time { return row.ExpiresAt.Add(time.Second) }
	if err := m.CheckPresented(row, raw); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expired = %v", err)
	}
}
