// Package metrics holds the shell's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shell_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	guardDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_guard_decisions_total",
			Help: "Route guard decisions by route and kind",
		},
		[]string{"route", "kind"},
	)

	queryFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_query_fetches_total",
			Help: "Query fetches by key and outcome",
		},
		[]string{"key", "outcome"},
	)

	queryFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shell_query_fetch_duration_seconds",
			Help:    "Upstream fetch duration by query key",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"key"},
	)
)

// RecordGuardDecision counts one guard decision.
func RecordGuardDecision(route, kind string) {
	guardDecisionsTotal.WithLabelValues(route, kind).Inc()
}

// RecordQueryFetch counts one finished fetch.
func RecordQueryFetch(key, outcome string, d time.Duration) {
	queryFetchesTotal.WithLabelValues(key, outcome).Inc()
	queryFetchDuration.WithLabelValues(key).Observe(d.Seconds())
}

// HTTP records request counts and durations labelled by route pattern.
func HTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
