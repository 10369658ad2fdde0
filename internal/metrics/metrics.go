// Package metrics exposes Prometheus collectors for the annotation job service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobOperationsTotal         *prometheus.CounterVec
	jobsByStatus               *prometheus.GaugeVec
	reconcileRunsTotal         *prometheus.CounterVec
	reconcileItemsSkippedTotal prometheus.Counter
	reconcileDurationSeconds   prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		jobOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annoserve_job_operations_total",
				Help: "Total lifecycle operations, labeled by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		)

		jobsByStatus = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "annoserve_jobs",
				Help: "Jobs currently tracked by the registry, labeled by status.",
			},
			[]string{"status"},
		)

		reconcileRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annoserve_reconcile_runs_total",
				Help: "Reconciliation iterations, labeled by result.",
			},
			[]string{"result"},
		)

		reconcileItemsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "annoserve_reconcile_items_skipped_total",
				Help: "Execution list items skipped because they could not be parsed.",
			},
		)

		reconcileDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "annoserve_reconcile_duration_seconds",
				Help:    "Histogram of reconciliation iteration durations.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveJobOperation increments the lifecycle operation counter.
func ObserveJobOperation(operation, outcome string) {
	if jobOperationsTotal == nil {
		return
	}
	jobOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// SetJobsByStatus sets the tracked-jobs gauge for one status.
func SetJobsByStatus(status string, n int) {
	if jobsByStatus == nil {
		return
	}
	jobsByStatus.WithLabelValues(status).Set(float64(n))
}

// ObserveReconcileRun records one reconciliation iteration.
func ObserveReconcileRun(result string, duration time.Duration) {
	if reconcileRunsTotal == nil {
		return
	}
	reconcileRunsTotal.WithLabelValues(result).Inc()
	reconcileDurationSeconds.Observe(duration.Seconds())
}

// ObserveReconcileItemSkipped counts an unparseable execution item.
func ObserveReconcileItemSkipped() {
	if reconcileItemsSkippedTotal == nil {
		return
	}
	reconcileItemsSkippedTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
