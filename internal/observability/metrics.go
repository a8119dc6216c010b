package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// spots run through the pipeline, labelled by processing category
	SpotsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlang_spots_processed_total",
			Help: "Total spots processed by the assignment pipeline",
		},
		[]string{"category"},
	)

	// block assignments written, labelled by campaign type
	BlockAssignments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlang_block_assignments_total",
			Help: "Total block assignments written",
		},
		[]string{"campaign_type"},
	)

	// language assignments flagged for human review
	ReviewFlagged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlang_review_flagged_total",
			Help: "Total language assignments flagged for review",
		},
	)

	// spots the grid could not place
	NoCoverage = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlang_no_coverage_total",
			Help: "Total spots with no grid coverage",
		},
	)

	// per-spot processing failures
	AssignmentErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spotlang_assignment_errors_total",
			Help: "Total per-spot assignment errors",
		},
	)

	// wall time per processing batch, labelled by category
	BatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotlang_batch_duration_seconds",
			Help:    "Histogram of batch processing durations",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"category"},
	)

	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spotlang_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spotlang_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		SpotsProcessed,
		BlockAssignments,
		ReviewFlagged,
		NoCoverage,
		AssignmentErrors,
		BatchDuration,
		RequestCount,
		RequestLatency,
	)
}
