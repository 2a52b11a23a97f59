// Package metrics exposes Prometheus metrics for the mailbox monitor.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Emails returned by the mailbox per poll.
	EmailsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailbox_monitor_emails_fetched_total",
			Help: "Total number of unread emails fetched from the mailbox",
		},
	)

	// Decisions by action and rule.
	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_monitor_decisions_total",
			Help: "Total number of assignment decisions",
		},
		[]string{"action", "rule"},
	)

	// Reassignment outcomes; error_kind is empty on full success.
	Reassignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailbox_monitor_reassignments_total",
			Help: "Total number of reassignment attempts by outcome",
		},
		[]string{"succeeded", "error_kind"},
	)

	// Prediction latency (milliseconds).
	PredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailbox_monitor_prediction_latency_ms",
			Help:    "Prediction service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(50, 2, 10), // 50ms to ~25s
		},
		[]string{"provider", "status"},
	)

	// Poll cycle failures.
	PollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailbox_monitor_poll_errors_total",
			Help: "Total number of polling cycles that failed to fetch mail",
		},
	)

	// Component health, 1 healthy and 0 unhealthy.
	ComponentHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mailbox_monitor_component_healthy",
			Help: "Result of the last health check per component",
		},
		[]string{"component"},
	)
)

// RecordFetched adds n fetched emails.
func RecordFetched(n int) {
	EmailsFetched.Add(float64(n))
}

// RecordDecision counts one decision.
func RecordDecision(action, rule string) {
	Decisions.WithLabelValues(action, rule).Inc()
}

// RecordReassignment counts one reassignment outcome.
func RecordReassignment(succeeded bool, errorKind string) {
	s := "false"
	if succeeded {
		s = "true"
	}
	Reassignments.WithLabelValues(s, errorKind).Inc()
}

// RecordPredictionLatency records the duration of one prediction call.
func RecordPredictionLatency(provider, status string, duration time.Duration) {
	PredictionLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

// IncrementPollErrors counts a failed poll.
func IncrementPollErrors() {
	PollErrors.Inc()
}

// SetComponentHealth records a component health check result.
func SetComponentHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	ComponentHealth.WithLabelValues(component).Set(v)
}
