package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env   string
	Port  int
	DBURL string
	// Store selects the Identity Store backend: postgres or memory.
	Store      string
	DBMaxConns int

	JWTSecret           string
	JWTAccessTTLMinutes int
	JWTRefreshTTLDays   int

	AdminEmail    string
	AdminUsername string
	AdminPassword string
	AdminRole     string

	AllowAnonymousSignup bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RateLimitTokenPerMin int
	CORSAllowedOrigins   []string
	MaxBodyBytes         int64

	OTELEndpoint string

	SweepIntervalSeconds  int
	RefreshRetentionHours int
	WorkerHealthPort      int
}

// Load reads the environment, after an optional .env file.
func Load() Config {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	return Config{
		Env:        getEnv("APP_ENV", "dev"),
		Port:       getEnvInt("PORT", 8080),
		DBURL:      getEnv("DATABASE_URL", buildDBURL()),
		Store:      strings.ToLower(getEnv("STORE", StorePostgres)),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 5),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 5),
		JWTRefreshTTLDays:   getEnvInt("JWT_REFRESH_TTL_DAYS", 1),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminRole:     getEnv("ADMIN_ROLE", "REGULAR"),

		AllowAnonymousSignup: getEnvBool("ACCESS_ALLOW_ANONYMOUS_SIGNUP", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitTokenPerMin: getEnvInt("RATE_LIMIT_TOKEN_PER_MIN", 20),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),

		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		SweepIntervalSeconds:  getEnvInt("SWEEP_INTERVAL_SECONDS", 3600),
		RefreshRetentionHours: getEnvInt("REFRESH_RETENTION_HOURS", 24),
		WorkerHealthPort:      getEnvInt("WORKER_HEALTH_PORT", 8081),
	}
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshTTLDays) * 24 * time.Hour
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "tenanthub")
	pass := getEnv("DB_PASSWORD", "tenanthub")
	name := getEnv("DB_NAME", "tenanthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds store work for one request; a nil parent means background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer in environment, using fallback", "key", key, "value", v, "fallback", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in environment, using fallback", "key", key, "value", v, "fallback", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
