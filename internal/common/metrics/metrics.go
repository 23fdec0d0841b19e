// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysisRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_requests_total",
			Help: "Total number of analysis requests by operation",
		},
		[]string{"operation"},
	)

	AnalysisFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_failures_total",
			Help: "Total number of failed analysis requests by operation",
		},
		[]string{"operation", "error_code"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analysis_duration_seconds",
			Help: "Duration of analysis request processing in seconds",
		},
		[]string{"operation"},
	)

	IssuesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issues_classified_total",
			Help: "Total number of issues classified by category",
		},
		[]string{"category"},
	)

	PriorityPredictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "priority_predictions_total",
			Help: "Total number of priority predictions by tier",
		},
		[]string{"priority_level"},
	)

	DuplicatesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicates_detected_total",
			Help: "Total number of analyses that found at least one near-duplicate",
		},
	)

	CandidateCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_cache_requests_total",
			Help: "Candidate cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
