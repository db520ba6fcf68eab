// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CrossoverRequestsCreated counts crossover requests created, by type.
	CrossoverRequestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_crossover_requests_created_total",
		Help: "Total number of crossover requests created, by request type",
	}, []string{"request_type"})

	// CrossoverResolutions counts resolver outcomes, by action and result.
	// Result is "ok" or the error code of the rejection.
	CrossoverResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_crossover_resolutions_total",
		Help: "Total number of crossover request resolutions, by action and result",
	}, []string{"action", "result"})

	// AlliancesMaterialized counts alliance rows created or retyped by
	// accepted requests, by relationship type.
	AlliancesMaterialized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_alliances_materialized_total",
		Help: "Total number of mythology alliances created or retyped, by relationship type",
	}, []string{"relationship_type"})

	// StoriesSpawned counts crossover story drafts created by accepted
	// story requests.
	StoriesSpawned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "codex_crossover_stories_spawned_total",
		Help: "Total number of crossover story drafts spawned from accepted requests",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codex_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnections is the gauge of active WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "codex_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts WebSocket events by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "codex_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// ObserveQuery records the latency of a database query that started at start.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}
