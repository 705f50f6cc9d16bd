package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/geocoder89/tenanthub/internal/access"
	"github.com/geocoder89/tenanthub/internal/actorctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDBClassifiesErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.create", func() error {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	})
	_ = p.ObserveDB("users.get", func() error { return context.DeadlineExceeded })
	_ = p.ObserveDB("users.get", func() error { return nil })
	_ = p.ObserveDB("users.get", func() error { return fmt.Errorf("get user: %w", pgx.ErrNoRows) })
	_ = p.ObserveDB("users.get", func() error { return &pgconn.PgError{Code: "22P02"} })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "duplicate_email")); got != 1 {
		t.Fatalf("duplicate_email count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 2 {
		t.Fatalf("error series = %d, want 2 (not_found is not an error)", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get", "timeout")); got != 1 {
		t.Fatalf("timeout count = %v, want 1", got)
	}
}

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&pgconn.PgError{Code: "23505", ConstraintName: "offices_name_key"}, "duplicate_office_name"},
		{&pgconn.PgError{Code: "23505", ConstraintName: "something_else"}, "unique_violation"},
		{&pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{&pgconn.PgError{Code: "40P01"}, "deadlock"},
		{&pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{errors.New("connection refused"), "connection"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		if got := classifyDBErr(tt.err); got != tt.want {
			t.Errorf("classifyDBErr(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserveSweep(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveSweep(3, nil)
	p.ObserveSweep(0, errors.New("db down"))

	if got := testutil.ToFloat64(p.SweptTokens); got != 3 {
		t.Fatalf("swept = %v, want 3", got)
	}
	if got := testutil.ToFloat64(p.SweepRuns.WithLabelValues("error")); got != 1 {
		t.Fatalf("error runs = %v, want 1", got)
	}
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer

	NewLoggerTo(&buf, "prod").Info("hello")

	if !strings.Contains(buf.String(), `"service":"tenanthub"`) {
		t.Fatalf("missing service attr: %s", buf.String())
	}
}

func TestLoggerAddsActor(t *testing.T) {
	var buf bytes.Buffer

	ctx := actorctx.WithCaller(context.Background(), access.Caller{UserID: "u-1", Authenticated: true})
	NewLoggerTo(&buf, "prod").InfoContext(ctx, "hello")

	if !strings.Contains(buf.String(), `"actor_id":"u-1"`) {
		t.Fatalf("missing actor attr: %s", buf.String())
	}

	buf.Reset()
	NewLoggerTo(&buf, "prod").InfoContext(context.Background(), "hello")

	if strings.Contains(buf.String(), "actor_id") {
		t.Fatalf("anonymous record carries actor: %s", buf.String())
	}
}
