package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ auth.RefreshTokenStore = (*RefreshTokensRepo)(nil)

type RefreshTokensRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRefreshTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool, prom: prom}
}

func (r *RefreshTokensRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *RefreshTokensRepo) Create(ctx context.Context, row auth.RefreshToken) error {
	return r.observe("refresh_tokens.create", func() error {
		return insertRefreshToken(ctx, r.pool, row)
	})
}

func insertRefreshToken(ctx context.Context, q querier, row auth.RefreshToken) error {
	_, err := q.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		row.ID, row.UserID, row.TokenHash, row.ExpiresAt, row.RevokedAt, row.ReplacedBy, row.CreatedAt,
	)
	return err
}

// Rotate locks the row to prevent concurrent refresh races.
func (r *RefreshTokensRepo) Rotate(ctx context.Context, id string, fn auth.RotateFunc) error {
	return r.observe("refresh_tokens.rotate", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		var current auth.RefreshToken

		err = tx.QueryRow(ctx, `
			SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
			FROM refresh_tokens
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(
			&current.ID,
			&current.UserID,
			&current.TokenHash,
			&current.ExpiresAt,
			&current.RevokedAt,
			&current.ReplacedBy,
			&current.CreatedAt,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return auth.ErrRefreshTokenNotFound
			}
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE refresh_tokens
			SET revoked_at = NOW(), replaced_by = $2
			WHERE id = $1
		`, current.ID, next.ID)
		if err != nil {
			return err
		}

		if err := insertRefreshToken(ctx, tx, next); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}

func (r *RefreshTokensRepo) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64

	err := r.observe("refresh_tokens.purge", func() error {
		tag, err := r.pool.Exec(ctx, `
			DELETE FROM refresh_tokens
			WHERE expires_at < $1
			   OR (revoked_at IS NOT NULL AND revoked_at < $1)
		`, cutoff)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})

	return n, err
}
