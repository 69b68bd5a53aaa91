// Package metrics provides Prometheus metrics for conversion runs
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadwatcher_runs_total",
			Help: "Total number of conversion runs by result kind",
		},
		[]string{"result"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cadwatcher_run_duration_seconds",
			Help:    "Wall time of conversion runs",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)

	FilesRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadwatcher_files_requested_total",
			Help: "Total number of STEP files submitted for conversion",
		},
	)

	LinesCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadwatcher_lines_captured_total",
			Help: "Lines read from the external tool by stream",
		},
		[]string{"stream"},
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadwatcher_runs_active",
			Help: "Number of conversion runs in flight",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadwatcher_uploads_total",
			Help: "GLB uploads to object storage by status",
		},
		[]string{"status"},
	)
)

// RecordRun records the outcome of a finished run.
func RecordRun(kind string, duration time.Duration) {
	if kind == "" {
		kind = "success"
	}
	RunsTotal.WithLabelValues(kind).Inc()
	RunDuration.Observe(duration.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer serves /metrics on addr until the listener fails.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
