// Package repo declares the Identity Store contract shared by the postgres
// and in-memory implementations.
package repo

import (
	"context"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
)

// UserStore returns user.ErrNotFound for missing rows and
// user.ErrUsernameTaken / user.ErrEmailTaken on unique violations.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) error
	// ListUsers is ordered by username.
	ListUsers(ctx context.Context, f user.Filter) ([]user.User, error)
}

type CompanyStore interface {
	CreateCompany(ctx context.Context, c company.Company) error
	GetCompany(ctx context.Context, id string) (company.Company, error)
	UpdateCompany(ctx context.Context, c company.Company) error
	// DeleteCompany removes the company and its offices and detaches its
	// users.
	DeleteCompany(ctx context.Context, id string) error
	// ListCompanies is ordered by owner, then creation time.
	ListCompanies(ctx context.Context, f company.Filter) ([]company.Company, error)
}

type OfficeStore interface {
	CreateOffice(ctx context.Context, o company.Office) error
	GetOffice(ctx context.Context, id string) (company.Office, error)
	DeleteOffice(ctx context.Context, id string) error
	// ListOffices is ordered by name.
	ListOffices(ctx context.Context, f company.OfficeFilter) ([]company.Office, error)
}

type Store interface {
	UserStore
	CompanyStore
	OfficeStore

	// WithinTx runs fn against a store bound to one transaction. fn's
	// writes are committed only if it returns nil.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
