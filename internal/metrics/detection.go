package metrics

import "github.com/prometheus/client_golang/prometheus"

// Detection Prometheus metrics.
var (
	DetectionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duplicheck",
			Name:      "detection_runs_total",
			Help:      "Total number of detection runs",
		},
		[]string{"mode", "status"},
	)

	DetectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "duplicheck",
			Name:      "detection_duration_seconds",
			Help:      "Detection run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mode"},
	)

	DuplicateGroupsFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duplicheck",
			Name:      "duplicate_groups_found_total",
			Help:      "Total duplicate groups found across runs",
		},
		[]string{"mode"},
	)

	FeaturesScanned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "duplicheck",
			Name:      "features_scanned_total",
			Help:      "Total features scanned across runs",
		},
	)
)

var detMetricsRegistered bool

// RegisterDetectionMetrics registers Prometheus detection metrics. Must be called once from main.
func RegisterDetectionMetrics() {
	if detMetricsRegistered {
		return
	}
	prometheus.MustRegister(DetectionRunsTotal)
	prometheus.MustRegister(DetectionDuration)
	prometheus.MustRegister(DuplicateGroupsFound)
	prometheus.MustRegister(FeaturesScanned)
	detMetricsRegistered = true
}
