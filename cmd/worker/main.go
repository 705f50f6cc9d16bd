package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/tenanthub/internal/config"
	"github.com/geocoder89/tenanthub/internal/db"
	"github.com/geocoder89/tenanthub/internal/observability"
	"github.com/geocoder89/tenanthub/internal/repo/postgres"
	"github.com/geocoder89/tenanthub/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env).With("component", "sweeper")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL, 2)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	s := worker.New(worker.Config{
		Interval:  time.Duration(cfg.SweepIntervalSeconds) * time.Second,
		Retention: time.Duration(cfg.RefreshRetentionHours) * time.Hour,
	}, postgres.NewRefreshTokensRepo(pool, prom), prom, log)

	// health + metrics on one small server
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHTTPHandler(reg))
	mux.Handle("/", s.HealthHandler(pool.Ping))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("sweeper has started", "interval_s", cfg.SweepIntervalSeconds, "retention_h", cfg.RefreshRetentionHours)

	if err := s.Run(ctx); err != nil {
		log.Error("sweeper stopped with error", "err", err)
	}

	sctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(sctx)

	log.Info("sweeper shutdown complete")
}
