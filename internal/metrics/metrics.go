package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeInvalid  = "invalid"
)

var (
	directoryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "performpulse",
		Subsystem: "directory",
		Name:      "requests_total",
		Help:      "Directory requests broken down by endpoint and outcome.",
	}, []string{"backend", "endpoint", "outcome"})

	directoryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "performpulse",
		Subsystem: "directory",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of directory requests.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"backend", "endpoint"})

	suggestionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "performpulse",
		Subsystem: "suggestions",
		Name:      "requests_total",
		Help:      "Suggestion generator calls broken down by backend and outcome.",
	}, []string{"backend", "outcome"})

	bookmarkPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "performpulse",
		Subsystem: "bookmarks",
		Name:      "persist_failures_total",
		Help:      "Bookmark load or save operations that failed and were absorbed.",
	})
)

// ObserveDirectoryRequest records one directory call.
func ObserveDirectoryRequest(backend, endpoint, outcome string, latency time.Duration) {
	directoryRequests.With(prometheus.Labels{
		"backend":  backend,
		"endpoint": endpoint,
		"outcome":  outcome,
	}).Inc()
	directoryLatency.With(prometheus.Labels{
		"backend":  backend,
		"endpoint": endpoint,
	}).Observe(latency.Seconds())
}

// ObserveSuggestion records one suggestion generator call.
func ObserveSuggestion(backend, outcome string) {
	suggestionRequests.WithLabelValues(backend, outcome).Inc()
}

// IncBookmarkPersistFailure counts an absorbed bookmark persistence failure.
func IncBookmarkPersistFailure() {
	bookmarkPersistFailures.Inc()
}
