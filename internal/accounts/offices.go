package accounts

import (
	"context"
	"fmt"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/validation"
)

const msgOfficeNameTaken = "office with this name already exists."

// Office operations assume the company was already resolved within the
// caller's scope.

func (s *Service) ListOffices(ctx context.Context, companyID string) ([]company.Office, error) {
	return s.store.ListOffices(ctx, company.OfficeFilter{CompanyID: strPtr(companyID)})
}

func (s *Service) CreateOffice(ctx context.Context, req company.CreateOfficeRequest) (company.Office, error) {
	if err := validation.Struct(req); err != nil {
		return company.Office{}, err
	}

	taken, err := s.store.ListOffices(ctx, company.OfficeFilter{Name: strPtr(req.Name)})
	if err != nil {
		return company.Office{}, fmt.Errorf("check office name: %w", err)
	}
	if len(taken) > 0 {
		return company.Office{}, validation.Single("name", "unique", msgOfficeNameTaken)
	}

	o := company.NewOfficeFromCreateRequest(req)

	if err := s.store.CreateOffice(ctx, o); err != nil {
		return company.Office{}, conflict(err)
	}

	return o, nil
}

func (s *Service) GetOffice(ctx context.Context, companyID, officeID string) (company.Office, error) {
	o, err := s.store.GetOffice(ctx, officeID)
	if err != nil {
		return company.Office{}, err
	}

	if o.CompanyID != companyID {
		return company.Office{}, company.ErrOfficeNotFound
	}

	return o, nil
}

func (s *Service) DeleteOffice(ctx context.Context, companyID, officeID string) error {
	if _, err := s.GetOffice(ctx, companyID, officeID); err != nil {
		return err
	}

	return s.store.DeleteOffice(ctx, officeID)
}
