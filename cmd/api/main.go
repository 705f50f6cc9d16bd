package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/db"
	"github.com/geocoder89/tenanthub/internal/db/migrations"
	httpx "github.com/geocoder89/tenanthub/internal/http"
	"github.com/geocoder89/tenanthub/internal/http/middlewares"
	"github.com/geocoder89/tenanthub/internal/observability"
	"github.com/geocoder89/tenanthub/internal/redisclient"
	"github.com/geocoder89/tenanthub/internal/repo"
	"github.com/geocoder89/tenanthub/internal/repo/memory"
	"github.com/geocoder89/tenanthub/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "tenanthub-api", cfg.Env, cfg.OTELEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{Prom: prom, Gatherer: reg}

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		deps.Store = memory.NewStore()
		deps.RefreshTokens = memory.NewRefreshTokens()

	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL, int32(cfg.DBMaxConns))
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		deps.Store = postgres.NewStore(pool, prom)
		deps.RefreshTokens = postgres.NewRefreshTokensRepo(pool, prom)
		deps.Ping = pool.Ping

	default:
		return fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	if err := seedAdmin(ctx, deps.Store, cfg, log); err != nil {
		return err
	}

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pctx, cancel := config.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pctx); err != nil {
			// the limiter fails open, so a cold redis is not fatal
			log.Warn("redis unavailable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()

		deps.Limits = redisclient.NewWindowCounter(rdb, "tenanthub:ratelimit")
	} else {
		deps.Limits = middlewares.NewMemoryWindowStore()
	}

	// set up routers with the log
	router, err := httpx.NewRouter(log, deps, cfg)
	if err != nil {
		return err
	}

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func seedAdmin(ctx context.Context, store repo.UserStore, cfg config.Config, log *slog.Logger) error {
	sctx, cancel := config.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	created, err := db.EnsureAdminUser(sctx, store, cfg)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}
	return nil
}
