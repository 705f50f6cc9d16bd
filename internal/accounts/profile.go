package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/security"
	"github.com/geocoder89/tenanthub/internal/validation"
)

const (
	msgProfileUsernameTaken = "This username is already in use."
	msgOldPasswordWrong     = "Old password is not correct"
)

// UpdateProfile changes a user's credentials and names. The old password is
// always checked against the target's stored hash. PUT (partial=false)
// requires every field.
func (s *Service) UpdateProfile(ctx context.Context, targetID string, req user.ProfileUpdateRequest, partial bool) (user.User, error) {
	target, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		return user.User{}, err
	}

	verr := &validation.Error{}
	if err := validation.Struct(req); err != nil {
		var ve *validation.Error
		if !errors.As(err, &ve) {
			return user.User{}, err
		}
		verr.Fields = append(verr.Fields, ve.Fields...)
	}

	requireField(verr, "old_password", req.OldPassword)
	if !partial {
		requireField(verr, "password", req.Password)
		requireField(verr, "password2", req.Password2)
		requireField(verr, "username", req.Username)
		requireField(verr, "first_name", req.FirstName)
		requireField(verr, "last_name", req.LastName)
	}

	checkPasswordPair(verr, req.Password, req.Password2)

	if req.Username != nil && *req.Username != "" && !verr.Has("username") {
		taken, err := s.store.ListUsers(ctx, user.Filter{Username: req.Username, ExcludeID: target.ID})
		if err != nil {
			return user.User{}, fmt.Errorf("check username: %w", err)
		}
		if len(taken) > 0 {
			verr.Add("username", "unique", msgProfileUsernameTaken)
		}
	}

	if req.OldPassword != nil && *req.OldPassword != "" {
		if err := s.hasher.Check(target.PasswordHash, *req.OldPassword); err != nil {
			if !errors.Is(err, security.ErrPasswordMismatch) {
				s.log.WarnContext(ctx, "old_password_check_failed", "user_id", target.ID, "err", err)
			}
			verr.Add("old_password", "old_password_incorrect", msgOldPasswordWrong)
		}
	}

	next := target
	applyString(&next.Username, req.Username)
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

	s.log.InfoContext(ctx, "profile_updated", "user_id", next.ID)

	return next, nil
}
