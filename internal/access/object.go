package access

import (
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
)

type ObjectKind string

const (
	KindCompany ObjectKind = "company"
	KindUser    ObjectKind = "user"
)

// Object is the record an object-level gate is evaluated against.
type Object struct {
	Kind      ObjectKind
	ID        string
	OwnerID   *string
	CompanyID *string
}

func CompanyObject(c company.Company) Object {
	return Object{Kind: KindCompany, ID: c.ID, OwnerID: c.OwnerID}
}

func UserObject(u user.User) Object {
	return Object{Kind: KindUser, ID: u.ID, CompanyID: u.CompanyID}
}
