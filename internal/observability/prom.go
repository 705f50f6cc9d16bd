package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Refresh token sweeper (worker)
	SweepRuns    *prometheus.CounterVec
	SweptTokens  prometheus.Counter
	SweepLastRun prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenanthub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tenanthub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				// Sane initial defaults
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "tenanthub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tenanthub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenanthub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),

		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tenanthub",
				Subsystem: "sweeper",
				Name:      "runs_total",
				Help:      "Refresh token sweeps by result.",
			},
			[]string{"result"}, // result=ok|error
		),
		SweptTokens: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tenanthub",
				Subsystem: "sweeper",
				Name:      "deleted_tokens_total",
				Help:      "Expired or revoked refresh tokens deleted.",
			},
		),
		SweepLastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tenanthub",
				Subsystem: "sweeper",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful sweep.",
			},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.DbQueryDuration, p.DbErrorsTotal, p.SweepRuns, p.SweptTokens, p.SweepLastRun)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// Handler serves the registry's metrics for /metrics.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(MetricsHTTPHandler(g))
}

func MetricsHTTPHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveSweep records one sweeper pass.
func (p *Prom) ObserveSweep(deleted int64, err error) {
	if err != nil {
		p.SweepRuns.WithLabelValues("error").Inc()
		return
	}

	p.SweepRuns.WithLabelValues("ok").Inc()
	p.SweptTokens.Add(float64(deleted))
	p.SweepLastRun.SetToCurrentTime()
}
