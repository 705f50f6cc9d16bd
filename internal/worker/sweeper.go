// Package worker runs the maintenance loop that deletes refresh tokens
// which expired, or were revoked, longer ago than the retention window.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/tenanthub/internal/observability"
)

type TokenPurger interface {
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type Config struct {
	Interval  time.Duration
	Retention time.Duration
	// PassTimeout bounds one sweep.
	PassTimeout time.Duration
}

type Sweeper struct {
	cfg   Config
	store TokenPurger
	prom  *observability.Prom
	log   *slog.Logger

	now     func() time.Time
	backoff func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, store TokenPurger, prom *observability.Prom, log *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = 30 * time.Second
	}

	return &Sweeper{
		cfg:     cfg,
		store:   store,
		prom:    prom,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		backoff: ExponentialBackoff,
	}
}

// Run sweeps immediately, then every Interval until ctx is cancelled.
// Consecutive failures are retried with exponential backoff instead.
func (s *Sweeper) Run(ctx context.Context) error {
	s.SetReady(true)
	defer s.SetReady(false)

	failures := 0

	for {
		wait := s.cfg.Interval

		if _, err := s.SweepOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			wait = s.backoff(failures)
			failures++
			s.log.Warn("sweep_failed", "err", err, "attempt", failures, "retry_in", wait.String())
		} else {
			failures = 0
		}

		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("sweeper received shutdown signal")
			return nil
		case <-timer.C:
		}
	}
}

// SweepOnce deletes stale refresh tokens and records the result.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.Retention)

	cctx, cancel := context.WithTimeout(ctx, s.cfg.PassTimeout)
	defer cancel()

	deleted, err := s.store.PurgeStale(cctx, cutoff)

	if s.prom != nil {
		s.prom.ObserveSweep(deleted, err)
	}

	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.log.Info("refresh_tokens_swept", "deleted", deleted, "cutoff", cutoff)
	}

	return deleted, nil
}

func (s *Sweeper) SetReady(v bool) {
	s.readyMu.Lock()
	s.ready = v
	s.readyMu.Unlock()
}

func (s *Sweeper) Ready() bool {
	s.readyMu.RLock()
	defer s.readyMu.RUnlock()
	return s.ready
}
