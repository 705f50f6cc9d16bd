package postgres

import (
	"errors"

	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// missingRow reports lookups that cannot match any row: no rows, or a key
// that is not valid input for the uuid column (SQLSTATE 22P02).
func missingRow(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// translate maps constraint violations onto domain errors.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case IsUniqueViolation(err):
		switch pgErr.ConstraintName {
		case "users_username_key":
			return user.ErrUsernameTaken
		case "users_email_key":
			return user.ErrEmailTaken
		case "companies_name_key":
			return company.ErrNameTaken
		case "offices_name_key":
			return company.ErrOfficeNameTaken
		}
	case isForeignKeyViolation(err):
		switch pgErr.ConstraintName {
		case "users_company_id_fkey", "offices_company_id_fkey":
			return company.ErrNotFound
		case "companies_owner_id_fkey":
			return user.ErrNotFound
		}
	}

	return err
}
