package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics,
// replacing direct access to the global Prometheus collectors with
// dependency injection.
type MetricsRegistry interface {
	// Pipeline metrics
	IncrementProcessed(category string)
	IncrementBlockAssignments(campaignType string)
	IncrementReviewFlagged()
	IncrementNoCoverage()
	IncrementErrors()
	RecordBatchDuration(category string, duration time.Duration)

	// HTTP request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus collectors.
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry.
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementProcessed(category string) {
	SpotsProcessed.WithLabelValues(category).Inc()
}

func (r *PrometheusRegistry) IncrementBlockAssignments(campaignType string) {
	BlockAssignments.WithLabelValues(campaignType).Inc()
}

func (r *PrometheusRegistry) IncrementReviewFlagged() {
	ReviewFlagged.Inc()
}

func (r *PrometheusRegistry) IncrementNoCoverage() {
	NoCoverage.Inc()
}

func (r *PrometheusRegistry) IncrementErrors() {
	AssignmentErrors.Inc()
}

func (r *PrometheusRegistry) RecordBatchDuration(category string, duration time.Duration) {
	BatchDuration.WithLabelValues(category).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing.
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry.
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementProcessed(category string)                                   {}
func (r *NoOpRegistry) IncrementBlockAssignments(campaignType string)                        {}
func (r *NoOpRegistry) IncrementReviewFlagged()                                              {}
func (r *NoOpRegistry) IncrementNoCoverage()                                                 {}
func (r *NoOpRegistry) IncrementErrors()                                                     {}
func (r *NoOpRegistry) RecordBatchDuration(category string, duration time.Duration)          {}
func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
