package memory

import (
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
)

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func cloneUser(u user.User) user.User {
	u.CompanyID = cloneStr(u.CompanyID)
	return u
}

func cloneCompany(c company.Company) company.Company {
	c.Name = cloneStr(c.Name)
	c.Address = cloneStr(c.Address)
	c.OwnerID = cloneStr(c.OwnerID)
	return c
}

func cloneOffice(o company.Office) company.Office {
	o.Address = cloneStr(o.Address)
	o.Country = cloneStr(o.Country)
	o.Region = cloneStr(o.Region)
	return o
}
