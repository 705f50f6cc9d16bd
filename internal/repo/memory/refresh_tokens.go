package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/tenanthub/internal/auth"
)

var _ auth.RefreshTokenStore = (*RefreshTokens)(nil)

type RefreshTokens struct {
	mu   sync.Mutex
	rows map[string]auth.RefreshToken
}

func NewRefreshTokens() *RefreshTokens {
	return &RefreshTokens{rows: make(map[string]auth.RefreshToken)}
}

func (r *RefreshTokens) Create(_ context.Context, row auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[row.ID] = row
	return nil
}

func (r *RefreshTokens) Rotate(_ context.Context, id string, fn auth.RotateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.rows[id]
	if !ok {
		return auth.ErrRefreshTokenNotFound
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	current.RevokedAt = &now
	current.ReplacedBy = &next.ID

	r.rows[id] = current
	r.rows[next.ID] = next
	return nil
}

func (r *RefreshTokens) PurgeStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, row := range r.rows {
		if row.ExpiresAt.Before(cutoff) || (row.RevokedAt != nil && row.RevokedAt.Before(cutoff)) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// Get is a test helper.
func (r *RefreshTokens) Get(id string) (auth.RefreshToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	return row, ok
}
