// Package metrics defines Prometheus collectors for the authorization service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision metrics
var (
	// DecisionsTotal tracks authorization decisions by kind and outcome.
	// Kind is one of "permission", "visibility", "assignment".
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// DecisionDuration tracks decision latency per kind.
	DecisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authz_decision_duration_seconds",
			Help:    "Authorization decision duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	// ResolutionErrorsTotal tracks failures inside resolution that were
	// converted into deny decisions.
	ResolutionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_resolution_errors_total",
			Help: "Total number of resolution failures converted into deny decisions",
		},
		[]string{"stage"},
	)
)

// Snapshot cache metrics
var (
	// SnapshotCacheTotal tracks snapshot cache lookups by result
	// (hit, miss, error, bypass).
	SnapshotCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_snapshot_cache_total",
			Help: "Total number of permission snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// SnapshotInvalidationsTotal tracks explicit snapshot invalidations.
	SnapshotInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authz_snapshot_invalidations_total",
			Help: "Total number of permission snapshot invalidations",
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal tracks HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks in-flight HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// DecisionOutcome converts an allow/deny boolean to a metric label.
func DecisionOutcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
