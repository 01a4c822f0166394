// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket / hub
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locrelay_websocket_connections",
			Help: "Current number of connected WebSocket clients",
		},
	)

	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_websocket_messages_received_total",
			Help: "Inbound WebSocket messages by type",
		},
		[]string{"type"},
	)

	WSMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_websocket_messages_dropped_total",
			Help: "Inbound WebSocket messages ignored",
		},
		[]string{"reason"}, // malformed, unknown_type, missing_username, rate_limited, invalid_event
	)

	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_broadcasts_total",
			Help: "Snapshots and notifications fanned out to all clients",
		},
		[]string{"type"},
	)

	ClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "locrelay_clients_evicted_total",
			Help: "Clients disconnected because their send buffer was full",
		},
	)

	// Registries
	PresenceEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locrelay_presence_entries",
			Help: "Users currently visible on the map",
		},
	)

	ActiveEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locrelay_active_events",
			Help: "Events currently held in memory",
		},
	)

	EventsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "locrelay_events_created_total",
			Help: "Events accepted by the registry",
		},
	)

	EventsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_events_rejected_total",
			Help: "Event create requests rejected by validation",
		},
		[]string{"source"}, // websocket, upload
	)

	EventsExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_events_expired_total",
			Help: "Events removed at end of life, by the path that removed them",
		},
		[]string{"path"}, // timer, sweep, reconcile
	)

	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "locrelay_reconcile_duration_seconds",
			Help:    "Duration of a full reconcile against the durable store",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Durable store
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_store_operations_total",
			Help: "Durable store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locrelay_store_operation_duration_seconds",
			Help:    "Durable store operation latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend", "operation"},
	)

	// Uploads
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locrelay_uploads_total",
			Help: "POST /upload results",
		},
		[]string{"result"}, // ok, missing_file, bad_type, invalid, too_large, storage_error
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "locrelay_upload_bytes",
			Help:    "Size of stored media",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordStoreOp records one durable store call.
func RecordStoreOp(backend, operation string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, result).Inc()
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
