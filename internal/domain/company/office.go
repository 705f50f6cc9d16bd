package company

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Office struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	Country   *string   `json:"country"`
	Region    *string   `json:"region"`
	CompanyID string    `json:"company"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrOfficeNotFound  = errors.New("office not found")
	ErrOfficeNameTaken = errors.New("office name already in use")
)

type OfficeFilter struct {
	CompanyID *string
	Name      *string
}

type CreateOfficeRequest struct {
	CompanyID string  `json:"-"`
	Name      string  `json:"name" binding:"required,min=1,max=256"`
	Address   *string `json:"address" binding:"omitempty,max=256"`
	Country   *string `json:"country" binding:"omitempty,max=256"`
	Region    *string `json:"region" binding:"omitempty,max=256"`
}

func NewOfficeFromCreateRequest(req CreateOfficeRequest) Office {
	return Office{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Address:   blankToNil(req.Address),
		Country:   blankToNil(req.Country),
		Region:    blankToNil(req.Region),
		CompanyID: req.CompanyID,
		CreatedAt: time.Now().UTC(),
	}
}
