// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

// Package metrics holds the Prometheus collectors exported at /metrics.
//
// Collectors are registered on the default registry through promauto, so
// importing the package is enough to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thereiwas_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_db_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation", "table", "error_type"}, // error_type: unique_violation, unavailable, other
	)

	StoreAcquireDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "thereiwas_store_acquire_duration_seconds",
			Help:    "Time spent waiting for a pooled store connection",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
		},
	)

	StoreAcquireTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thereiwas_store_acquire_timeouts_total",
			Help: "Total number of store connection acquisitions that timed out",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thereiwas_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thereiwas_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_rate_limit_hits_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"}, // "api", "login"
	)

	// Ingest Metrics
	IngestMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_ingest_messages_total",
			Help: "OwnTracks messages handled by message type and outcome",
		},
		[]string{"type", "outcome"},
	)

	AccessPointResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_access_point_resolutions_total",
			Help: "Access point resolutions by path taken",
		},
		[]string{"path"}, // found, created, reconciled, conflict, error
	)

	UnknownTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thereiwas_unknown_triggers_total",
			Help: "Location reports carrying an unrecognized trigger code",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thereiwas_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thereiwas_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Auth Metrics
	ClientTokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_client_token_cache_lookups_total",
			Help: "Total number of client token cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	ClientTokenCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thereiwas_client_token_cache_entries",
			Help: "Client tokens held in the lookup cache after the last sweep",
		},
	)

	// Audit Metrics
	AuditEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_audit_entries_total",
			Help: "Audit entries recorded by action and result",
		},
		[]string{"action", "result"},
	)

	AuditWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thereiwas_audit_write_errors_total",
			Help: "Audit entries that could not be persisted",
		},
	)

	AuditSyncWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thereiwas_audit_sync_writes_total",
			Help: "Audit entries written synchronously because the buffer was full",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thereiwas_events_published_total",
			Help: "location.stored events by publish result",
		},
		[]string{"backend", "result"}, // result: "success", "error", "rejected", "closed"
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "thereiwas_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a store query metric. errorType is ignored on success.
func RecordDBQuery(operation, table string, duration time.Duration, errorType string) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if errorType != "" {
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStoreAcquire records how long a connection acquisition took.
func RecordStoreAcquire(duration time.Duration, timedOut bool) {
	StoreAcquireDuration.Observe(duration.Seconds())
	if timedOut {
		StoreAcquireTimeouts.Inc()
	}
}

// RecordIngest counts one handled OwnTracks message.
func RecordIngest(messageType, outcome string) {
	IngestMessages.WithLabelValues(messageType, outcome).Inc()
}

// RecordAccessPointResolution counts one resolver run by path.
func RecordAccessPointResolution(path string) {
	AccessPointResolutions.WithLabelValues(path).Inc()
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
