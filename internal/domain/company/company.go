package company

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID        string    `json:"id"`
	Name      *string   `json:"name"`
	Address   *string   `json:"address"`
	OwnerID   *string   `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID is the company's owner.
func (c Company) OwnedBy(userID string) bool {
	return c.OwnerID != nil && *c.OwnerID == userID
}

var (
	ErrNotFound  = errors.New("company not found")
	ErrNameTaken = errors.New("company name already in use")
)

type Filter struct {
	ID      *string
	Name    *string
	OwnerID *string
}

// name is nullable, so both fields stay pointers
type CreateRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=256"`
	Address *string `json:"address" binding:"omitempty,max=256"`
}

type UpdateRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=256"`
	Address *string `json:"address" binding:"omitempty,max=256"`
}

func NewFromCreateRequest(req CreateRequest, ownerID string) Company {
	now := time.Now().UTC()
	owner := ownerID

	return Company{
		ID:        uuid.NewString(),
		Name:      blankToNil(req.Name),
		Address:   blankToNil(req.Address),
		OwnerID:   &owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func blankToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}

	return v
}
