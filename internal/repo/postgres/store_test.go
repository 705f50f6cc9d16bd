package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocoder89/tenanthub/internal/auth"
	"github.com/geocoder89/tenanthub/internal/db"
	"github.com/geocoder89/tenanthub/internal/db/migrations"
	"github.com/geocoder89/tenanthub/internal/domain/company"
	"github.com/geocoder89/tenanthub/internal/domain/user"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/repo/postgres"
)

func strPtr(s string) *string { return &s }

// setupPool needs TEST_DB_DSN pointing at a disposable database.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool, migrations.FS))

	_, err = pool.Exec(ctx, `TRUNCATE refresh_tokens, offices, users, companies CASCADE`)
	require.NoError(t, err)

	return pool
}

func newUser(username, email string, companyID *string) user.User {
	req := user.CreateRequest{Username: username, Email: email}
	return user.NewFromCreateRequest(req, user.RoleAdmin, companyID, "hash")
}

func TestUsersUniqueConstraints(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, newUser("owner1", "o1@x.com", nil)))

	err := store.CreateUser(ctx, newUser("owner1", "other@x.com", nil))
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	err = store.CreateUser(ctx, newUser("other", "o1@x.com", nil))
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	err = store.CreateUser(ctx, newUser("w1", "w1@x.com", strPtr("00000000-0000-0000-0000-000000000000")))
	assert.ErrorIs(t, err, company.ErrNotFound)

	_, err = store.GetUser(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "abc")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = store.GetCompany(ctx, "abc")
	assert.ErrorIs(t, err, company.ErrNotFound)

	_, err = store.GetOffice(ctx, "abc")
	assert.ErrorIs(t, err, company.ErrOfficeNotFound)

	assert.ErrorIs(t, store.DeleteCompany(ctx, "abc"), company.ErrNotFound)
}

func TestConcurrentSameEmailOneWins(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateUser(ctx, newUser([]string{"a", "b"}[i], "same@x.com", nil))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, user.ErrEmailTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestWithinTxRollsBack(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	owner := newUser("owner1", "o1@x.com", nil)
	require.NoError(t, store.CreateUser(ctx, owner))

	boom := errors.New("boom")
	c := company.NewFromCreateRequest(company.CreateRequest{Name: strPtr("Acme")}, owner.ID)

	err := store.WithinTx(ctx, func(tx repo.Store) error {
		require.NoError(t, tx.CreateCompany(ctx, c))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetCompany(ctx, c.ID)
	assert.ErrorIs(t, err, company.ErrNotFound)
}

func TestDeleteCompanyCascades(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	owner := newUser("owner1", "o1@x.com", nil)
	require.NoError(t, store.CreateUser(ctx, owner))

	c := company.NewFromCreateRequest(company.CreateRequest{Name: strPtr("Acme")}, owner.ID)
	require.NoError(t, store.CreateCompany(ctx, c))

	dup := company.NewFromCreateRequest(company.CreateRequest{Name: strPtr("Acme")}, owner.ID)
	assert.ErrorIs(t, store.CreateCompany(ctx, dup), company.ErrNameTaken)

	owner.CompanyID = &c.ID
	require.NoError(t, store.UpdateUser(ctx, owner))

	office := company.NewOfficeFromCreateRequest(company.CreateOfficeRequest{CompanyID: c.ID, Name: "HQ"})
	require.NoError(t, store.CreateOffice(ctx, office))

	require.NoError(t, store.DeleteCompany(ctx, c.ID))

	_, err := store.GetOffice(ctx, office.ID)
	assert.ErrorIs(t, err, company.ErrOfficeNotFound)

	got, err := store.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CompanyID)
}

func TestListUsersFiltersAndOrders(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	ctx := context.Background()

	owner := newUser("zed", "z@x.com", nil)
	require.NoError(t, store.CreateUser(ctx, owner))

	c := company.NewFromCreateRequest(company.CreateRequest{}, owner.ID)
	require.NoError(t, store.CreateCompany(ctx, c))

	require.NoError(t, store.CreateUser(ctx, newUser("bob", "b@x.com", &c.ID)))
	require.NoError(t, store.CreateUser(ctx, newUser("amy", "a@x.com", &c.ID)))

	got, err := store.ListUsers(ctx, user.Filter{CompanyID: &c.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "amy", got[0].Username)
	assert.Equal(t, "bob", got[1].Username)

	got, err = store.ListUsers(ctx, user.Filter{Username: strPtr("bob"), ExcludeID: got[1].ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRefreshTokensRotateAndPurge(t *testing.T) {
	pool := setupPool(t)
	store := postgres.NewStore(pool, nil)
	tokens := postgres.NewRefreshTokensRepo(pool, nil)
	ctx := context.Background()

	owner := newUser("owner1", "o1@x.com", nil)
	require.NoError(t, store.CreateUser(ctx, owner))

	m := auth.NewManager("secret", time.Minute, time.Hour)

	raw, row, err := m.NewRefreshRecord(owner.ID, owner.Role)
	require.NoError(t, err)
	require.NoError(t, tokens.Create(ctx, row))

	var next auth.RefreshToken
	err = tokens.Rotate(ctx, row.ID, func(current auth.RefreshToken) (auth.RefreshToken, error) {
		if err := m.CheckPresented(current, raw); err != nil {
			return auth.RefreshToken{}, err
		}
		_, next, err = m.NewRefreshRecord(owner.ID, owner.Role)
		return next, err
	})
	require.NoError(t, err)

	// a second rotation of the same token sees it revoked
	err = tokens.Rotate(ctx, row.ID, func(current auth.RefreshToken) (auth.RefreshToken, error) {
		return auth.RefreshToken{}, m.CheckPresented(current, raw)
	})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	err = tokens.Rotate(ctx, "00000000-0000-0000-0000-000000000000", func(auth.RefreshToken) (auth.RefreshToken, error) {
		t.Fatal("fn called for missing row")
		return auth.RefreshToken{}, nil
	})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)

	// only the revoked row is old enough to go
	n, err := tokens.PurgeStale(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
