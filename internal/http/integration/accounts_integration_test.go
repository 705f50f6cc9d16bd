package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/db"
	"github.com/geocoder89/tenanthub/internal/db/migrations"
	apphttp "github.com/geocoder89/tenanthub/internal/http"
	"github.com/geocoder89/tenanthub/internal/repo/postgres"
)

const password = "Secret123!"

func testConfig() config.Config {
	return config.Config{
		Env:                  "test",
		AdminEmail:           "admin@example.com",
		AdminPassword:        "ignored-in-tests",
		JWTSecret:            "test-secret-key",
		JWTAccessTTLMinutes:  60,
		JWTRefreshTTLDays:    7,
		AllowAnonymousSignup: true,
		RateLimitTokenPerMin: 1000,
		MaxBodyBytes:         1 << 20,
	}
}

func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn, 8)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE refresh_tokens, offices, users, companies CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router, err := apphttp.NewRouter(logger, apphttp.Deps{
		Store:         postgres.NewStore(pool, nil),
		RefreshTokens: postgres.NewRefreshTokensRepo(pool, nil),
		Ping:          pool.Ping,
	}, testConfig())
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	return router, pool
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func field(t *testing.T, w *httptest.ResponseRecorder, name string) string {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}

	s, _ := m[name].(string)
	return s
}

func signup(username, email string) map[string]string {
	return map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password,
	}
}

func login(t *testing.T, r http.Handler, email string) (string, string) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/token/", "", map[string]string{"email": email, "password": password})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body=%s", email, w.Code, w.Body.String())
	}

	return field(t, w, "access"), field(t, w, "refresh")
}

func TestTenantLifecyclePostgres(t *testing.T) {
	r, _ := setupRouter(t)

	if w := doJSON(t, r, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz = %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/users/", "", signup("owner1", "o1@x.com"))
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: status %d body=%s", w.Code, w.Body.String())
	}
	if role := field(t, w, "role"); role != "ADMIN" {
		t.Fatalf("role = %q, want ADMIN", role)
	}

	ownerToken, refresh := login(t, r, "o1@x.com")

	w = doJSON(t, r, http.MethodPost, "/company/", ownerToken, map[string]string{"name": "Acme"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create company: status %d body=%s", w.Code, w.Body.String())
	}
	companyID := field(t, w, "id")

	w = doJSON(t, r, http.MethodPost, "/workers/", ownerToken, signup("w1", "w1@x.com"))
	if w.Code != http.StatusCreated {
		t.Fatalf("create worker: status %d body=%s", w.Code, w.Body.String())
	}
	if got := field(t, w, "company"); got != companyID {
		t.Fatalf("worker company = %q, want %q", got, companyID)
	}
	if role := field(t, w, "role"); role != "REGULAR" {
		t.Fatalf("worker role = %q, want REGULAR", role)
	}

	workerToken, _ := login(t, r, "w1@x.com")

	w = doJSON(t, r, http.MethodDelete, "/company/"+companyID+"/", workerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("worker delete: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": refresh})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": refresh})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh: status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/company/"+companyID+"/", ownerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status %d body=%s", w.Code, w.Body.String())
	}
}

func TestConcurrentSignupSameEmailPostgres(t *testing.T) {
	r, pool := setupRouter(t)

	var wg sync.WaitGroup
	codes := make([]int, 2)

	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doJSON(t, r, http.MethodPost, "/users/", "", signup([]string{"a", "b"}[i], "same@x.com"))
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest, http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1 (codes %v)", created, codes)
	}

	var n int
	if err := pool.QueryRow(context.Background(), `SELECT count(*) FROM users WHERE email = 'same@x.com'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}
