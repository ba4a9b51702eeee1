package session

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for destruction reasons.
const (
	reasonDrained   = "drained"
	reasonError     = "error"
	reasonCancelled = "cancelled"
)

var (
	operationsDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asq_operations_dispatched_total",
			Help: "Total number of operations sent to the driver.",
		},
	)

	resultsDrained = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asq_results_drained_total",
			Help: "Total number of result objects delivered to callbacks.",
		},
	)

	operationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "asq_operation_failures_total",
			Help: "Total number of operations that entered the error funnel.",
		},
	)

	sessionsDestroyed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asq_sessions_destroyed_total",
			Help: "Total number of sessions destroyed, by reason.",
		},
		[]string{"reason"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "asq_active_sessions",
			Help: "Number of sessions created and not yet destroyed.",
		},
	)
)

func init() {
	prometheus.MustRegister(operationsDispatched)
	prometheus.MustRegister(resultsDrained)
	prometheus.MustRegister(operationFailures)
	prometheus.MustRegister(sessionsDestroyed)
	prometheus.MustRegister(activeSessions)

	// Pre-initialize label combinations so they appear in /metrics with
	// value 0 from startup, rather than only after first observation.
	sessionsDestroyed.WithLabelValues(reasonDrained)
	sessionsDestroyed.WithLabelValues(reasonError)
	sessionsDestroyed.WithLabelValues(reasonCancelled)
}
