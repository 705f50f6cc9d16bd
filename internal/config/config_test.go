package config_test

import (
	"testing"
	"time"

	"github.com/geocoder89/tenanthub/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STORE", "")

	cfg := config.Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.Store != config.StorePostgres {
		t.Fatalf("expected postgres store, got %q", cfg.Store)
	}
	if cfg.AllowAnonymousSignup {
		t.Fatal("anonymous signup must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "MEMORY")
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "15")
	t.Setenv("JWT_REFRESH_TTL_DAYS", "2")
	t.Setenv("ACCESS_ALLOW_ANONYMOUS_SIGNUP", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")

	cfg := config.Load()

	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.Store != config.StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.Store)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("unexpected access ttl %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 48*time.Hour {
		t.Fatalf("unexpected refresh ttl %v", cfg.RefreshTTL())
	}
	if !cfg.AllowAnonymousSignup {
		t.Fatal("expected anonymous signup enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.DBURL != "postgres://u:p@db:5432/x?sslmode=disable" {
		t.Fatalf("unexpected db url %q", cfg.DBURL)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if got := config.Load().Port; got != 8080 {
		t.Fatalf("expected fallback 8080, got %d", got)
	}
}
