package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
)

var _ repo.Store = (*Store)(nil)

// Store is a mutex-guarded Identity Store for tests and local runs.
type Store struct {
	mu   sync.Mutex
	data *data
}

func NewStore() *Store {
	return &Store{data: newData()}
}

type data struct {
	users     map[string]user.User
	companies map[string]company.Company
	offices   map[string]company.Office
}

func newData() *data {
	return &data{
		users:     make(map[string]user.User),
		companies: make(map[string]company.Company),
		offices:   make(map[string]company.Office),
	}
}

func (d *data) clone() *data {
	out := newData()
	for k, v := range d.users {
		out.users[k] = cloneUser(v)
	}
	for k, v := range d.companies {
		out.companies[k] = cloneCompany(v)
	}
	for k, v := range d.offices {
		out.offices[k] = cloneOffice(v)
	}
	return out
}

func (s *Store) locked(fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.data)
}

// WithinTx holds the store lock for the whole callback and rolls the data
// back to a snapshot if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()

	if err := fn(&txStore{data: s.data}); err != nil {
		s.data = snapshot
		return err
	}

	return nil
}

func (s *Store) CreateUser(_ context.Context, u user.User) error {
	return s.locked(func(d *data) error { return d.createUser(u) })
}

func (s *Store) GetUser(_ context.Context, id string) (out user.User, err error) {
	err = s.locked(func(d *data) error {
		out, err = d.getUser(id)
		return err
	})
	return out, err
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (out user.User, err error) {
	err = s.locked(func(d *data) error {
		out, err = d.getUserByEmail(email)
		return err
	})
	return out, err
}

func (s *Store) UpdateUser(_ context.Context, u user.User) error {
	return s.locked(func(d *data) error { return d.updateUser(u) })
}

func (s *Store) ListUsers(_ context.Context, f user.Filter) (out []user.User, err error) {
	err = s.locked(func(d *data) error {
		out = d.listUsers(f)
		return nil
	})
	return out, err
}

func (s *Store) CreateCompany(_ context.Context, c company.Company) error {
	return s.locked(func(d *data) error { return d.createCompany(c) })
}

func (s *Store) GetCompany(_ context.Context, id string) (out company.Company, err error) {
	err = s.locked(func(d *data) error {
		out, err = d.getCompany(id)
		return err
	})
	return out, err
}

func (s *Store) UpdateCompany(_ context.Context, c company.Company) error {
	return s.locked(func(d *data) error { return d.updateCompany(c) })
}

func (s *Store) DeleteCompany(_ context.Context, id string) error {
	return s.locked(func(d *data) error { return d.deleteCompany(id) })
}

func (s *Store) ListCompanies(_ context.Context, f company.Filter) (out []company.Company, err error) {
	err = s.locked(func(d *data) error {
		out = d.listCompanies(f)
		return nil
	})
	return out, err
}

func (s *Store) CreateOffice(_ context.Context, o company.Office) error {
	return s.locked(func(d *data) error { return d.createOffice(o) })
}

func (s *Store) GetOffice(_ context.Context, id string) (out company.Office, err error) {
	err = s.locked(func(d *data) error {
		out, err = d.getOffice(id)
		return err
	})
	return out, err
}

func (s *Store) DeleteOffice(_ context.Context, id string) error {
	return s.locked(func(d *data) error { return d.deleteOffice(id) })
}

func (s *Store) ListOffices(_ context.Context, f company.OfficeFilter) (out []company.Office, err error) {
	err = s.locked(func(d *data) error {
		out = d.listOffices(f)
		return nil
	})
	return out, err
}

// txStore runs against data while the owning Store's lock is held.
type txStore struct {
	data *data
}

func (t *txStore) WithinTx(_ context.Context, fn func(tx repo.Store) error) error {
	return fn(t)
}

func (t *txStore) CreateUser(_ context.Context, u user.User) error { return t.data.createUser(u) }
func (t *txStore) GetUser(_ context.Context, id string) (user.User, error) {
	return t.data.getUser(id)
}
func (t *txStore) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	return t.data.getUserByEmail(email)
}
func (t *txStore) UpdateUser(_ context.Context, u user.User) error { return t.data.updateUser(u) }
func (t *txStore) ListUsers(_ context.Context, f user.Filter) ([]user.User, error) {
	return t.data.listUsers(f), nil
}
func (t *txStore) CreateCompany(_ context.Context, c company.Company) error {
	return t.data.createCompany(c)
}
func (t *txStore) GetCompany(_ context.Context, id string) (company.Company, error) {
	return t.data.getCompany(id)
}
func (t *txStore) UpdateCompany(_ context.Context, c company.Company) error {
	return t.data.updateCompany(c)
}
func (t *txStore) DeleteCompany(_ context.Context, id string) error { return t.data.deleteCompany(id) }
func (t *txStore) ListCompanies(_ context.Context, f company.Filter) ([]company.Company, error) {
	return t.data.listCompanies(f), nil
}
func (t *txStore) CreateOffice(_ context.Context, o company.Office) error {
	return t.data.createOffice(o)
}
func (t *txStore) GetOffice(_ context.Context, id string) (company.Office, error) {
	return t.data.getOffice(id)
}
func (t *txStore) DeleteOffice(_ context.Context, id string) error { return t.data.deleteOffice(id) }
func (t *txStore) ListOffices(_ context.Context, f company.OfficeFilter) ([]company.Office, error) {
	return t.data.listOffices(f), nil
}

// users

func (d *data) createUser(u user.User) error {
	if err := d.checkUserUnique(u); err != nil {
		return err
	}
	if u.CompanyID != nil {
		if _, ok := d.companies[*u.CompanyID]; !ok {
			return company.ErrNotFound
		}
	}

	d.users[u.ID] = cloneUser(u)
	return nil
}

func (d *data) updateUser(u user.User) error {
	if _, ok := d.users[u.ID]; !ok {
		return user.ErrNotFound
	}

	if err := d.checkUserUnique(u); err != nil {
		return err
	}

	if u.CompanyID != nil {
		if _, ok := d.companies[*u.CompanyID]; !ok {
			return company.ErrNotFound
		}
	}

	d.users[u.ID] = cloneUser(u)
	return nil
}

func (d *data) checkUserUnique(u user.User) error {
	for id, existing := range d.users {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	return nil
}

func (d *data) getUser(id string) (user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (d *data) getUserByEmail(email string) (user.User, error) {
	for _, u := range d.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (d *data) listUsers(f user.Filter) []user.User {
	out := make([]user.User, 0)

	for _, u := range d.users {
		if f.ExcludeID != "" && u.ID == f.ExcludeID {
			continue
		}
		if f.CompanyID != nil && !u.InCompany(*f.CompanyID) {
			continue
		}
		if f.Username != nil && u.Username != *f.Username {
			continue
		}
		if f.Email != nil && u.Email != *f.Email {
			continue
		}
		out = append(out, cloneUser(u))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Username != out[j].Username {
			return out[i].Username < out[j].Username
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// companies

func (d *data) createCompany(c company.Company) error {
	if err := d.checkCompanyUnique(c); err != nil {
		return err
	}
	if c.OwnerID != nil {
		if _, ok := d.users[*c.OwnerID]; !ok {
			return user.ErrNotFound
		}
	}

	d.companies[c.ID] = cloneCompany(c)
	return nil
}

func (d *data) updateCompany(c company.Company) error {
	if _, ok := d.companies[c.ID]; !ok {
		return company.ErrNotFound
	}
	if err := d.checkCompanyUnique(c); err != nil {
		return err
	}

	d.companies[c.ID] = cloneCompany(c)
	return nil
}

// null names never collide, as with a SQL unique index
func (d *data) checkCompanyUnique(c company.Company) error {
	if c.Name == nil {
		return nil
	}
	for id, existing := range d.companies {
		if id != c.ID && existing.Name != nil && *existing.Name == *c.Name {
			return company.ErrNameTaken
		}
	}
	return nil
}

func (d *data) getCompany(id string) (company.Company, error) {
	c, ok := d.companies[id]
	if !ok {
		return company.Company{}, company.ErrNotFound
	}
	return cloneCompany(c), nil
}

func (d *data) deleteCompany(id string) error {
	if _, ok := d.companies[id]; !ok {
		return company.ErrNotFound
	}

	for oid, o := range d.offices {
		if o.CompanyID == id {
			delete(d.offices, oid)
		}
	}

	for uid, u := range d.users {
		if u.InCompany(id) {
			u.CompanyID = nil
			d.users[uid] = u
		}
	}

	delete(d.companies, id)
	return nil
}

func (d *data) listCompanies(f company.Filter) []company.Company {
	out := make([]company.Company, 0)

	for _, c := range d.companies {
		if f.ID != nil && c.ID != *f.ID {
			continue
		}
		if f.Name != nil && (c.Name == nil || *c.Name != *f.Name) {
			continue
		}
		if f.OwnerID != nil && !c.OwnedBy(*f.OwnerID) {
			continue
		}
		out = append(out, cloneCompany(c))
	}

	sort.Slice(out, func(i, j int) bool {
		oi, oj := deref(out[i].OwnerID), deref(out[j].OwnerID)
		if oi != oj {
			return oi < oj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// offices

func (d *data) createOffice(o company.Office) error {
	if _, ok := d.companies[o.CompanyID]; !ok {
		return company.ErrNotFound
	}
	for _, existing := range d.offices {
		if existing.Name == o.Name {
			return company.ErrOfficeNameTaken
		}
	}

	d.offices[o.ID] = cloneOffice(o)
	return nil
}

func (d *data) getOffice(id string) (company.Office, error) {
	o, ok := d.offices[id]
	if !ok {
		return company.Office{}, company.ErrOfficeNotFound
	}
	return cloneOffice(o), nil
}

func (d *data) deleteOffice(id string) error {
	if _, ok := d.offices[id]; !ok {
		return company.ErrOfficeNotFound
	}
	delete(d.offices, id)
	return nil
}

func (d *data) listOffices(f company.OfficeFilter) []company.Office {
	out := make([]company.Office, 0)

	for _, o := range d.offices {
		if f.CompanyID != nil && o.CompanyID != *f.CompanyID {
			continue
		}
		if f.Name != nil && o.Name != *f.Name {
			continue
		}
		out = append(out, cloneOffice(o))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}
