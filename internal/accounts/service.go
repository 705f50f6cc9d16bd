// Package accounts implements the account workflows: user registration
// and worker provisioning, profile updates, and tenant (company/office)
// management scoped to the caller.
package accounts

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// ErrConflict wraps a unique-key violation the store reported after
// validation had already passed, i.e. a concurrent write won the race.
var ErrConflict = errors.New("conflicting record")

type Service struct {
	store  repo.Store
	hasher security.Hasher
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithHasher(h security.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store repo.Store, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store:  store,
		hasher: security.NewHasher(bcrypt.DefaultCost),
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func conflict(err error) error {
	switch {
	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, company.ErrNameTaken),
		errors.Is(err, company.ErrOfficeNameTaken):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}

func strPtr(s string) *string { return &s }
