// Package metrics provides Prometheus metrics for the trends service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResearchTotal counts research calls by outcome source.
	ResearchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trends",
			Name:      "research_total",
			Help:      "Total number of research calls by result source",
		},
		[]string{"source", "cached"},
	)

	// ProviderErrorsTotal counts provider failures absorbed by the fallback.
	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trends",
			Name:      "provider_errors_total",
			Help:      "Total number of LLM provider failures by reason",
		},
		[]string{"reason"},
	)

	// IngestedTotal counts trends persisted by bulk ingestion.
	IngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trends",
			Name:      "ingested_total",
			Help:      "Total number of trends created",
		},
	)

	// IngestFailuresTotal counts rejected or failed ingestion batches.
	IngestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trends",
			Name:      "ingest_failures_total",
			Help:      "Total number of failed ingestion batches by kind",
		},
		[]string{"kind"},
	)

	// VisibilityChangesTotal counts hide and restore transitions.
	VisibilityChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trends",
			Name:      "visibility_changes_total",
			Help:      "Total number of visibility transitions by target state",
		},
		[]string{"state"},
	)

	// HTTPRequestDuration measures API latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trends",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// RecordResearch records a completed research call.
func RecordResearch(source string, cached bool) {
	ResearchTotal.WithLabelValues(source, strconv.FormatBool(cached)).Inc()
}

// RecordProviderError records a provider failure.
func RecordProviderError(reason string) {
	ProviderErrorsTotal.WithLabelValues(reason).Inc()
}

// RecordIngested records created trends.
func RecordIngested(count int) {
	IngestedTotal.Add(float64(count))
}

// RecordIngestFailure records a failed batch.
func RecordIngestFailure(kind string) {
	IngestFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordVisibilityChange records a hide or restore.
func RecordVisibilityChange(hidden bool) {
	state := "visible"
	if hidden {
		state = "hidden"
	}
	VisibilityChangesTotal.WithLabelValues(state).Inc()
}

// ObserveHTTPRequest records the latency of one request.
func ObserveHTTPRequest(route, method string, status int, seconds float64) {
	HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(seconds)
}
