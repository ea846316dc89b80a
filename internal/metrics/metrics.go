// Package metrics provides Prometheus instrumentation for the interpreter.
// Collectors are registered on the default registry; the HTTP adapter
// exposes them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfarer_dispatches_total",
			Help: "Total number of processed inbound events",
		},
		[]string{"result"}, // result: matched, noop
	)

	dispatchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wayfarer_dispatch_duration_seconds",
			Help:    "Dispatch processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	warningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfarer_warnings_total",
			Help: "Total number of recovered dispatch warnings",
		},
		[]string{"code"},
	)

	serviceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayfarer_service_calls_total",
			Help: "Total number of external service calls",
		},
		[]string{"service", "outcome"}, // outcome: ok, error
	)

	runsCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayfarer_runs_completed_total",
			Help: "Total number of runs that reached a terminal close",
		},
	)
)

// ObserveDispatch records one processed inbound event.
func ObserveDispatch(matched bool, elapsed time.Duration) {
	result := "noop"
	if matched {
		result = "matched"
	}
	dispatchesTotal.WithLabelValues(result).Inc()
	dispatchDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveWarning records one recovered warning by code.
func ObserveWarning(code string) {
	warningsTotal.WithLabelValues(code).Inc()
}

// ObserveServiceCall records one external call outcome.
func ObserveServiceCall(service string, ok bool) {
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	serviceCallsTotal.WithLabelValues(service, outcome).Inc()
}

// ObserveRunCompleted records a terminal close.
func ObserveRunCompleted() {
	runsCompletedTotal.Inc()
}
