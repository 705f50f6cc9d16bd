package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreateUser(ctx, user.User{ID: "u1", Username: "ann", Email: "ann@x.com"}))

	err := s.CreateUser(ctx, user.User{ID: "u2", Username: "ann", Email: "other@x.com"})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	err = s.CreateUser(ctx, user.User{ID: "u2", Username: "bob", Email: "ann@x.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	// updating a user against its own row is not a collision
	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	u.FirstName = "Ann"
	require.NoError(t, s.UpdateUser(ctx, u))

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestReturnedUsersAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreateCompany(ctx, company.Company{ID: "c1", Name: strPtr("Acme")}))
	require.NoError(t, s.CreateUser(ctx, user.User{ID: "u1", Username: "ann", Email: "ann@x.com", CompanyID: strPtr("c1")}))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	*u.CompanyID = "changed"

	again, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", *again.CompanyID)
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repo.Store) error {
		if err := tx.CreateUser(ctx, user.User{ID: "u1", Username: "ann", Email: "ann@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, user.ErrNotFound)

	err = s.WithinTx(ctx, func(tx repo.Store) error {
		return tx.CreateUser(ctx, user.User{ID: "u1", Username: "ann", Email: "ann@x.com"})
	})
	require.NoError(t, err)

	_, err = s.GetUser(ctx, "u1")
	assert.NoError(t, err)
}

func TestDeleteCompanyCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreateUser(ctx, user.User{ID: "owner", Username: "owner", Email: "o@x.com"}))
	require.NoError(t, s.CreateCompany(ctx, company.Company{ID: "c1", Name: strPtr("Acme"), OwnerID: strPtr("owner")}))

	u, _ := s.GetUser(ctx, "owner")
	u.CompanyID = strPtr("c1")
	require.NoError(t, s.UpdateUser(ctx, u))
	require.NoError(t, s.CreateOffice(ctx, company.Office{ID: "o1", Name: "HQ", CompanyID: "c1"}))

	require.NoError(t, s.DeleteCompany(ctx, "c1"))

	_, err := s.GetOffice(ctx, "o1")
	assert.ErrorIs(t, err, company.ErrOfficeNotFound)

	u, err = s.GetUser(ctx, "owner")
	require.NoError(t, err)
	assert.Nil(t, u.CompanyID)

	assert.ErrorIs(t, s.DeleteCompany(ctx, "c1"), company.ErrNotFound)
}

func TestCompanyNamesAndNulls(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.CreateCompany(ctx, company.Company{ID: "c1"}))
	require.NoError(t, s.CreateCompany(ctx, company.Company{ID: "c2"}))
	require.NoError(t, s.CreateCompany(ctx, company.Company{ID: "c3", Name: strPtr("Acme")}))

	err := s.CreateCompany(ctx, company.Company{ID: "c4", Name: strPtr("Acme")})
	assert.ErrorIs(t, err, company.ErrNameTaken)
}

func TestListUsersOrderedByUsername(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.CreateUser(ctx, user.User{ID: name, Username: name, Email: name + "@x.com"}))
	}

	got, err := s.ListUsers(ctx, user.Filter{ExcludeID: "bob"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "carol", got[1].Username)
}

func TestRefreshTokensRotateAndPurge(t *testing.T) {
	ctx := context.Background()
	r := NewRefreshTokens()
	now := time.Now().UTC()

	require.NoError(t, r.Create(ctx, auth.RefreshToken{ID: "t1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))

	err := r.Rotate(ctx, "t1", func(current auth.RefreshToken) (auth.RefreshToken, error) {
		return auth.RefreshToken{ID: "t2", UserID: current.UserID, ExpiresAt: now.Add(time.Hour)}, nil
	})
	require.NoError(t, err)

	old, ok := r.Get("t1")
	require.True(t, ok)
	require.NotNil(t, old.RevokedAt)
	assert.Equal(t, "t2", *old.ReplacedBy)

	rejected := errors.New("rejected")
	err = r.Rotate(ctx, "t2", func(auth.RefreshToken) (auth.RefreshToken, error) { return auth.RefreshToken{}, rejected })
	require.ErrorIs(t, err, rejected)

	next, _ := r.Get("t2")
	assert.Nil(t, next.RevokedAt)

	assert.ErrorIs(t, r.Rotate(ctx, "nope", nil), auth.ErrRefreshTokenNotFound)

	n, err := r.PurgeStale(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok = r.Get("t1")
	assert.False(t, ok)
}
