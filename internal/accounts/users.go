package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/actorctx"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/security"
	"github.com/geocoder89/tenanthub/internal/validation"
)

const (
	msgPasswordMismatch = "Password fields didn't match."
	msgEmailTaken       = "This field must be unique."
	msgUsernameTaken    = "A user with that username already exists."
)

// CreateUser registers a user. An ADMIN caller provisions a REGULAR worker
// in its own company; any other caller gets a fresh ADMIN account with no
// company.
func (s *Service) CreateUser(ctx context.Context, caller access.Caller, req user.CreateRequest) (user.User, error) {
	req.Email = user.NormalizeEmail(req.Email)

	verr := &validation.Error{}
	if err := validation.Struct(req); err != nil {
		var ve *validation.Error
		if !errors.As(err, &ve) {
			return user.User{}, err
		}
		verr.Fields = append(verr.Fields, ve.Fields...)
	}

	if req.Password != req.Password2 {
		verr.Add("password", "password_mismatch", msgPasswordMismatch)
	}

	if err := s.checkIdentityFree(ctx, verr, "", &req.Username, &req.Email); err != nil {
		return user.User{}, err
	}

	addPasswordProblems(verr, req.Password, req.Username, req.Email, req.FirstName, req.LastName)

	if err := verr.Err(); err != nil {
		return user.User{}, err
	}

	role, companyID := roleFor(caller)

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.NewFromCreateRequest(req, role, companyID, hash)

	if err := s.store.CreateUser(ctx, u); err != nil {
		return user.User{}, conflict(err)
	}

	s.log.InfoContext(ctx, "user_created", "user_id", u.ID, "role", u.Role, "created_by", caller.UserID)

	return u, nil
}

func roleFor(caller access.Caller) (user.Role, *string) {
	if caller.IsAdmin() {
		var companyID *string
		if caller.CompanyID != nil {
			companyID = strPtr(*caller.CompanyID)
		}
		return user.RoleRegular, companyID
	}

	return user.RoleAdmin, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.store.GetUserByEmail(ctx, user.NormalizeEmail(email))
}

func (s *Service) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx, user.Filter{})
}

// UpdateUser is the staff edit of any account. PUT (partial=false) needs
// username, email and both password fields.
func (s *Service) UpdateUser(ctx context.Context, id string, req user.UpdateRequest, partial bool) (user.User, error) {
	target, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if req.Email != nil {
		req.Email = strPtr(user.NormalizeEmail(*req.Email))
	}

	verr := &validation.Error{}
	if err := validation.Struct(req); err != nil {
		var ve *validation.Error
		if !errors.As(err, &ve) {
			return user.User{}, err
		}
		verr.Fields = append(verr.Fields, ve.Fields...)
	}

	if !partial {
		requireField(verr, "username", req.Username)
		requireField(verr, "email", req.Email)
		requireField(verr, "password", req.Password)
		requireField(verr, "password2", req.Password2)
	}
	checkPasswordPair(verr, req.Password, req.Password2)

	if err := s.checkIdentityFree(ctx, verr, target.ID, req.Username, req.Email); err != nil {
		return user.User{}, err
	}

	next := target
	applyString(&next.Username, req.Username)
	applyString(&next.Email, req.Email)
	applyString(&next.FirstName, req.FirstName)
	applyString(&next.LastName, req.LastName)

	if req.Password != nil {
		addPasswordProblems(verr, *req.Password, next.Username, next.Email, next.FirstName, next.LastName)
	}

	if err := verr.Err(); err != nil {
		return user.User{}, err
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		next.PasswordHash = hash
	}

	next.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, next); err != nil {
		return user.User{}, conflict(err)
	}

	actor, _ := actorctx.UserIDFrom(ctx)
	s.log.InfoContext(ctx, "user_updated", "user_id", next.ID, "by", actor, "partial", partial)

	return next, nil
}

// DeactivateUser is the DELETE on a user: accounts are switched off, never
// removed.
func (s *Service) DeactivateUser(ctx context.Context, id string) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if !u.IsActive {
		return nil
	}

	u.IsActive = false
	u.UpdatedAt = s.now()

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return err
	}

	actor, _ := actorctx.UserIDFrom(ctx)
	s.log.InfoContext(ctx, "user_deactivated", "user_id", u.ID, "by", actor)
	return nil
}

// checkIdentityFree records a field error for a username or email already
// held by someone other than excludeID.
func (s *Service) checkIdentityFree(ctx context.Context, verr *validation.Error, excludeID string, username, email *string) error {
	if email != nil && *email != "" && !verr.Has("email") {
		taken, err := s.store.ListUsers(ctx, user.Filter{Email: email, ExcludeID: excludeID})
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if len(taken) > 0 {
			verr.Add("email", "unique", msgEmailTaken)
		}
	}

	if username != nil && *username != "" && !verr.Has("username") {
		taken, err := s.store.ListUsers(ctx, user.Filter{Username: username, ExcludeID: excludeID})
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if len(taken) > 0 {
			verr.Add("username", "unique", msgUsernameTaken)
		}
	}

	return nil
}

func addPasswordProblems(verr *validation.Error, password, username, email, firstName, lastName string) {
	if password == "" {
		return
	}

	problems := security.ValidatePassword(password,
		security.UserAttribute{Label: "username", Value: username},
		security.UserAttribute{Label: "first name", Value: firstName},
		security.UserAttribute{Label: "last name", Value: lastName},
		security.UserAttribute{Label: "email address", Value: email},
	)

	for _, p := range problems {
		verr.Add("password", p.Rule, p.Message)
	}
}

func checkPasswordPair(verr *validation.Error, password, password2 *string) {
	switch {
	case password == nil && password2 == nil:
	case password != nil && password2 == nil:
		if !verr.Has("password2") {
			verr.Add("password2", "required", "is required")
		}
	case password == nil && password2 != nil:
		if !verr.Has("password") {
			verr.Add("password", "required", "is required")
		}
	case *password != *password2:
		verr.Add("password", "password_mismatch", msgPasswordMismatch)
	}
}

func requireField(verr *validation.Error, field string, v *string) {
	if (v == nil || *v == "") && !verr.Has(field) {
		verr.Add(field, "required", "is required")
	}
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
