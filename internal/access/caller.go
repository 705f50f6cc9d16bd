package access

import "github.com/geocoder89/tenanthub/internal/domain/user"

// Caller is the identity a request acts as. The zero value is anonymous.
type Caller struct {
	UserID        string
	Role          user.Role
	CompanyID     *string
	Staff         bool
	Active        bool
	Authenticated bool
}

func Anonymous() Caller {
	return Caller{}
}

func FromUser(u user.User) Caller {
	return Caller{
		UserID:        u.ID,
		Role:          u.Role,
		CompanyID:     u.CompanyID,
		Staff:         u.IsStaff,
		Active:        u.IsActive,
		Authenticated: true,
	}
}

func (c Caller) IsAdmin() bool {
	if !c.Authenticated {
		return false
	}

	switch c.Role {
	case user.RoleAdmin:
		return true
	case user.RoleRegular:
		return false
	default:
		return false
	}
}

// IsStaff reports elevated privilege. Anonymous callers never have it.
func (c Caller) IsStaff() bool {
	return c.Authenticated && c.Staff
}

// InCompany reports whether the caller is attached to companyID. A caller
// without a company belongs to none.
func (c Caller) InCompany(companyID string) bool {
	return c.Authenticated && c.CompanyID != nil && *c.CompanyID == companyID
}
