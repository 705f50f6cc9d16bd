package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `id, name, address, owner_id, created_at, updated_at`

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company

	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCompany(ctx context.Context, c company.Company) error {
	return s.observe("companies.create", func() error {
		_, err := s.db.Exec(ctx,
			`INSERT INTO companies (`+companyColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.Name, c.Address, c.OwnerID, c.CreatedAt, c.UpdatedAt,
		)
		return translate(err)
	})
}

func (s *Store) GetCompany(ctx context.Context, id string) (company.Company, error) {
	var c company.Company

	err := s.observe("companies.get", func() error {
		var err error
		c, err = scanCompany(s.db.QueryRow(ctx,
			`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if missingRow(err) {
			return company.Company{}, company.ErrNotFound
		}
		return company.Company{}, err
	}

	return c, nil
}

func (s *Store) UpdateCompany(ctx context.Context, c company.Company) error {
	return s.observe("companies.update", func() error {
		tag, err := s.db.Exec(ctx,
			`UPDATE companies SET name = $2, address = $3, updated_at = $4 WHERE id = $1`,
			c.ID, c.Name, c.Address, c.UpdatedAt,
		)
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return company.ErrNotFound
		}
		return nil
	})
}

// DeleteCompany relies on the schema: offices cascade, users.company_id is
// set to NULL.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	return s.observe("companies.delete", func() error {
		tag, err := s.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
		if missingRow(err) {
			return company.ErrNotFound
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return company.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListCompanies(ctx context.Context, f company.Filter) ([]company.Company, error) {
	var conds []string
	var args []any

	argsPosition := 1
	add := func(cond string, v any) {
		conds = append(conds, fmt.Sprintf(cond, argsPosition))
		args = append(args, v)
		argsPosition++
	}

	if f.ID != nil {
		add("id = $%d", *f.ID)
	}
	if f.Name != nil {
		add("name = $%d", *f.Name)
	}
	if f.OwnerID != nil {
		add("owner_id = $%d", *f.OwnerID)
	}

	query := `SELECT ` + companyColumns + ` FROM companies`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY owner_id ASC NULLS FIRST, created_at ASC"

	out := make([]company.Company, 0)

	err := s.observe("companies.list", func() error {
		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCompany(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	return out, err
}
