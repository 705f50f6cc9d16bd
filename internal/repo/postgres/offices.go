package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/jackc/pgx/v5"
)

const officeColumns = `id, name, address, country, region, company_id, created_at`

func scanOffice(row pgx.Row) (company.Office, error) {
	var o company.Office

	err := row.Scan(&o.ID, &o.Name, &o.Address, &o.Country, &o.Region, &o.CompanyID, &o.CreatedAt)
	return o, err
}

func (s *Store) CreateOffice(ctx context.Context, o company.Office) error {
	return s.observe("offices.create", func() error {
		_, err := s.db.Exec(ctx,
			`INSERT INTO offices (`+officeColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			o.ID, o.Name, o.Address, o.Country, o.Region, o.CompanyID, o.CreatedAt,
		)
		return translate(err)
	})
}

func (s *Store) GetOffice(ctx context.Context, id string) (company.Office, error) {
	var o company.Office

	err := s.observe("offices.get", func() error {
		var err error
		o, err = scanOffice(s.db.QueryRow(ctx,
			`SELECT `+officeColumns+` FROM offices WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if missingRow(err) {
			return company.Office{}, company.ErrOfficeNotFound
		}
		return company.Office{}, err
	}

	return o, nil
}

func (s *Store) DeleteOffice(ctx context.Context, id string) error {
	return s.observe("offices.delete", func() error {
		tag, err := s.db.Exec(ctx, `DELETE FROM offices WHERE id = $1`, id)
		if missingRow(err) {
			return company.ErrOfficeNotFound
		}
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return company.ErrOfficeNotFound
		}
		return nil
	})
}

func (s *Store) ListOffices(ctx context.Context, f company.OfficeFilter) ([]company.Office, error) {
	var conds []string
	var args []any

	if f.CompanyID != nil {
		args = append(args, *f.CompanyID)
		conds = append(conds, fmt.Sprintf("company_id = $%d", len(args)))
	}
	if f.Name != nil {
		args = append(args, *f.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}

	query := `SELECT ` + officeColumns + ` FROM offices`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name ASC"

	out := make([]company.Office, 0)

	err := s.observe("offices.list", func() error {
		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOffice(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})

	return out, err
}
