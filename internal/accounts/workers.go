package accounts

import (
	"context"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
)

// ListWorkers returns every user attached to the company the caller owns,
// the owner included. It fails with company.ErrNotFound when the caller
// owns none.
func (s *Service) ListWorkers(ctx context.Context, caller access.Caller) (company.Company, []user.User, error) {
	c, err := s.ownedCompany(ctx, caller)
	if err != nil {
		return company.Company{}, nil, err
	}

	workers, err := s.store.ListUsers(ctx, user.Filter{CompanyID: strPtr(c.ID)})
	if err != nil {
		return company.Company{}, nil, err
	}

	return c, workers, nil
}

// GetWorker loads one user of the caller's owned company.
func (s *Service) GetWorker(ctx context.Context, caller access.Caller, id string) (company.Company, user.User, error) {
	c, err := s.ownedCompany(ctx, caller)
	if err != nil {
		return company.Company{}, user.User{}, err
	}

	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return company.Company{}, user.User{}, err
	}

	if !u.InCompany(c.ID) {
		return company.Company{}, user.User{}, user.ErrNotFound
	}

	return c, u, nil
}
