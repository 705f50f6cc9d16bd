package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, first_name, last_name, role, company_id,
	password_hash, is_active, is_staff, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.Role,
		&u.CompanyID,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsStaff,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	return s.observe("users.create", func() error {
		_, err := s.db.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Role, u.CompanyID,
			u.PasswordHash, u.IsActive, u.IsStaff, u.CreatedAt, u.UpdatedAt,
		)
		return translate(err)
	})
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.getUserBy(ctx, "users.get", "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.getUserBy(ctx, "users.get_by_email", "email", email)
}

func (s *Store) getUserBy(ctx context.Context, op, column, value string) (user.User, error) {
	var u user.User

	err := s.observe(op, func() error {
		var err error
		u, err = scanUser(s.db.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value))
		return err
	})

	if err != nil {
		if missingRow(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) error {
	return s.observe("users.update", func() error {
		tag, err := s.db.Exec(ctx,
			`UPDATE users
			SET username = $2, email = $3, first_name = $4, last_name = $5, role = $6,
				company_id = $7, password_hash = $8, is_active = $9, is_staff = $10, updated_at = $11
			WHERE id = $1`,
			u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Role,
			u.CompanyID, u.PasswordHash, u.IsActive, u.IsStaff, u.UpdatedAt,
		)
		if err != nil {
			return translate(err)
		}
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListUsers(ctx context.Context, f user.Filter) ([]user.User, error) {
	var conds []string
	var args []any

	argsPosition := 1
	add := func(cond string, v any) {
		conds = append(conds, fmt.Sprintf(cond, argsPosition))
		args = append(args, v)
		argsPosition++
	}

	if f.CompanyID != nil {
		add("company_id = $%d", *f.CompanyID)
	}
	if f.Username != nil {
		add("username = $%d", *f.Username)
	}
	if f.Email != nil {
		add("email = $%d", *f.Email)
	}
	if f.ExcludeID != "" {
		add("id <> $%d", f.ExcludeID)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY username ASC, id ASC"

	out := make([]user.User, 0)

	err := s.observe("users.list", func() error {
		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	return out, err
}
