// Package metrics provides Prometheus metrics definitions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "incidentforge"

var (
	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status_code"},
	)

	incidentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "incidents_created_total",
			Help:      "Total incidents created by severity",
		},
		[]string{"severity"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "status_transitions_total",
			Help:      "Total incident status transitions by target status",
		},
		[]string{"status"},
	)

	followUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "follow_ups_total",
			Help:      "Follow-up lifecycle outcomes (scheduled, replaced, fired, canceled)",
		},
		[]string{"outcome"},
	)

	followUpsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "workflow",
			Name:      "follow_ups_pending",
			Help:      "Number of currently pending follow-ups",
		},
	)
)

// RecordIncidentCreated records a created incident.
func RecordIncidentCreated(severity string) {
	incidentsCreated.WithLabelValues(severity).Inc()
}

// RecordStatusTransition records an incident status transition.
func RecordStatusTransition(status string) {
	statusTransitions.WithLabelValues(status).Inc()
}

// RecordFollowUp records a follow-up lifecycle outcome.
func RecordFollowUp(outcome string) {
	followUps.WithLabelValues(outcome).Inc()
}

// SetFollowUpsPending updates the pending follow-up gauge.
func SetFollowUpsPending(n int) {
	followUpsPending.Set(float64(n))
}
