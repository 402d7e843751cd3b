// Package metrics holds the Prometheus collectors for registry, tracking,
// cache and HTTP activity. Collectors register on the default registry and
// are served by the API's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for RegistryOperations.
const (
	ResultOK             = "ok"
	ResultNotFound       = "not_found"
	ResultAlreadyExists  = "already_exists"
	ResultInvalid        = "invalid"
	ResultMetricNotFound = "metric_not_found"
	ResultTransient      = "transient"
	ResultError          = "error"
)

var (
	// Registry Metrics
	RegistryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_registry_operations_total",
			Help: "Total number of registry coordinator operations",
		},
		[]string{"operation", "result"},
	)

	RegistryOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlstudy_registry_operation_duration_seconds",
			Help:    "Duration of registry coordinator operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ModelVersionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_model_versions_created_total",
			Help: "Total number of model versions created",
		},
		[]string{"model"},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_stage_transitions_total",
			Help: "Total number of model version stage transitions",
		},
		[]string{"stage"},
	)

	VersionsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlstudy_versions_archived_total",
			Help: "Versions archived as a side effect of promotion",
		},
	)

	// Tracking Metrics
	RunsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_runs_logged_total",
			Help: "Total number of tracked runs that ended, by final status",
		},
		[]string{"status"},
	)

	// Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_cache_lookups_total",
			Help: "Cache lookups by cache name and result (hit or miss)",
		},
		[]string{"cache", "result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlstudy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_registry_events_dropped_total",
			Help: "Registry events a slow listener missed",
		},
		[]string{"type"},
	)

	LogEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlstudy_log_entries_total",
			Help: "Structured log entries written while serving, by level and category",
		},
		[]string{"level", "category"},
	)
)

// RecordRegistryOperation records one coordinator call.
func RecordRegistryOperation(operation, result string, duration time.Duration) {
	RegistryOperations.WithLabelValues(operation, result).Inc()
	RegistryOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordVersionCreated counts a new version of model.
func RecordVersionCreated(model string) {
	ModelVersionsCreated.WithLabelValues(model).Inc()
}

// RecordStageTransition counts a transition to stage and the versions it
// archived.
func RecordStageTransition(stage string, archived int) {
	StageTransitions.WithLabelValues(stage).Inc()
	if archived > 0 {
		VersionsArchived.Add(float64(archived))
	}
}

// RecordRunEnded counts a run reaching a terminal status.
func RecordRunEnded(status string) {
	RunsLogged.WithLabelValues(status).Inc()
}

// RecordCacheLookup records a hit or miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordEventDropped counts one registry event a listener missed
func RecordEventDropped(eventType string) {
	EventsDroppedTotal.WithLabelValues(eventType).Inc()
}

// RecordLogEntry counts one structured log entry.
func RecordLogEntry(level, category string) {
	LogEntriesTotal.WithLabelValues(level, category).Inc()
}
