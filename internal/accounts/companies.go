package accounts

import (
	"context"
	"fmt"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/validation"
)

const msgCompanyNameTaken = "company with this name already exists."

// CreateCompany stores a company owned by the caller. A caller without a
// company is attached to the new one in the same transaction.
func (s *Service) CreateCompany(ctx context.Context, caller access.Caller, req company.CreateRequest) (company.Company, error) {
	if !caller.Authenticated {
		return company.Company{}, access.ErrNotAuthenticated
	}

	if err := validation.Struct(req); err != nil {
		return company.Company{}, err
	}

	c := company.NewFromCreateRequest(req, caller.UserID)

	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		if err := checkCompanyNameFree(ctx, tx, c); err != nil {
			return err
		}

		if err := tx.CreateCompany(ctx, c); err != nil {
			return conflict(err)
		}

		owner, err := tx.GetUser(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("load owner: %w", err)
		}

		if owner.CompanyID != nil {
			return nil
		}

		owner.CompanyID = strPtr(c.ID)
		owner.UpdatedAt = s.now()
		return tx.UpdateUser(ctx, owner)
	})
	if err != nil {
		return company.Company{}, err
	}

	s.log.InfoContext(ctx, "company_created", "company_id", c.ID, "owner_id", caller.UserID)

	return c, nil
}

// ListCompanies returns the caller's own company, or nothing.
func (s *Service) ListCompanies(ctx context.Context, caller access.Caller) ([]company.Company, error) {
	if caller.CompanyID == nil {
		return []company.Company{}, nil
	}

	return s.store.ListCompanies(ctx, company.Filter{ID: caller.CompanyID})
}

// GetCompany loads a company inside the caller's scope; anything else is
// reported as not found.
func (s *Service) GetCompany(ctx context.Context, caller access.Caller, id string) (company.Company, error) {
	if !caller.InCompany(id) {
		return company.Company{}, company.ErrNotFound
	}

	return s.store.GetCompany(ctx, id)
}

func (s *Service) UpdateCompany(ctx context.Context, caller access.Caller, id string, req company.UpdateRequest) (company.Company, error) {
	current, err := s.GetCompany(ctx, caller, id)
	if err != nil {
		return company.Company{}, err
	}

	if err := validation.Struct(req); err != nil {
		return company.Company{}, err
	}

	next := current
	if req.Name != nil {
		next.Name = nil
		if *req.Name != "" {
			next.Name = strPtr(*req.Name)
		}
	}
	if req.Address != nil {
		next.Address = nil
		if *req.Address != "" {
			next.Address = strPtr(*req.Address)
		}
	}
	next.UpdatedAt = s.now()

	if err := checkCompanyNameFree(ctx, s.store, next); err != nil {
		return company.Company{}, err
	}

	if err := s.store.UpdateCompany(ctx, next); err != nil {
		return company.Company{}, conflict(err)
	}

	return next, nil
}

// DeleteCompany removes the company and its offices; its users stay, with
// no company.
func (s *Service) DeleteCompany(ctx context.Context, caller access.Caller, id string) error {
	if _, err := s.GetCompany(ctx, caller, id); err != nil {
		return err
	}

	err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		return tx.DeleteCompany(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "company_deleted", "company_id", id, "by", caller.UserID)
	return nil
}

func checkCompanyNameFree(ctx context.Context, store repo.CompanyStore, c company.Company) error {
	if c.Name == nil {
		return nil
	}

	existing, err := store.ListCompanies(ctx, company.Filter{Name: c.Name})
	if err != nil {
		return fmt.Errorf("check company name: %w", err)
	}

	for _, other := range existing {
		if other.ID != c.ID {
			return validation.Single("name", "unique", msgCompanyNameTaken)
		}
	}

	return nil
}

// ownedCompany is the company the caller owns. Should several exist, the
// oldest wins.
func (s *Service) ownedCompany(ctx context.Context, caller access.Caller) (company.Company, error) {
	if !caller.Authenticated {
		return company.Company{}, company.ErrNotFound
	}

	owned, err := s.store.ListCompanies(ctx, company.Filter{OwnerID: strPtr(caller.UserID)})
	if err != nil {
		return company.Company{}, err
	}

	if len(owned) == 0 {
		return company.Company{}, company.ErrNotFound
	}

	oldest := owned[0]
	for _, c := range owned[1:] {
		if c.CreatedAt.Before(oldest.CreatedAt) {
			oldest = c
		}
	}

	return oldest, nil
}
