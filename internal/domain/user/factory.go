package user

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds an active, non-staff user from the incoming DTO.
// Role, company and password hash are decided by the caller.
func NewFromCreateRequest(req CreateRequest, role Role, companyID *string, passwordHash string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        NormalizeEmail(req.Email),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CompanyID:    companyID,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
