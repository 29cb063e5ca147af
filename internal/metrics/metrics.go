// Package metrics exposes Prometheus counters for query compilation,
// store searches and event-time matching.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeSyntaxError  = "syntax_error"
	OutcomeCompileError = "compile_error"
	OutcomeFailure      = "failure"
	OutcomeCacheHit     = "cache_hit"
)

var (
	// CompileTotal counts query compilations by entity and outcome.
	CompileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sieve_compile_total",
			Help: "Total number of query compilations",
		},
		[]string{"entity", "outcome"},
	)
	// SearchDuration is the latency of store searches.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sieve_search_duration_seconds",
			Help:    "Store search latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity"},
	)
	// MatchTotal counts saved filter evaluations against record events.
	MatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sieve_match_total",
			Help: "Total number of saved filter evaluations",
		},
		[]string{"entity", "matched"},
	)
	// NotificationsTotal counts published notifications.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sieve_notifications_total",
			Help: "Total number of notifications published",
		},
		[]string{"entity"},
	)
)

// ObserveSearch records the duration of a search that started at start.
func ObserveSearch(entity string, start time.Time) {
	SearchDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	}
}
