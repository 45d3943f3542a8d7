package ports

import (
	"context"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
)

// CandidateSource delivers candidate records to the batch driver.
// Implementations may read files, databases or remote services.
type CandidateSource interface {
	// IDs lists every candidate the source can deliver, in a stable order.
	IDs(ctx context.Context) ([]string, error)

	// Fetch returns the record for id. A missing candidate is reported as
	// an error wrapping ErrCandidateNotFound.
	Fetch(ctx context.Context, id string) (domain.CandidateRecord, error)
}

// ResultSink receives scored results. Implementations must be safe for
// concurrent use since the batch driver delivers from several workers.
type ResultSink interface {
	Write(ctx context.Context, result domain.ScoreResult) error

	// Close flushes any buffered results.
	Close(ctx context.Context) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations integrate with observability platforms like Prometheus.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as a dimension
	// score.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// Metric names recorded through MetricsCollector.
const (
	// MetricCandidatesScored counts finished candidates, labelled by status.
	MetricCandidatesScored = "candidates_scored_total"
	// MetricCandidateFailures counts failed candidates, labelled by stage.
	MetricCandidateFailures = "candidate_failures_total"
	// MetricStageFailures counts failed unit executions, labelled by unit.
	MetricStageFailures = "stage_failures_total"
	// MetricDimensionScore observes dimension scores, labelled by dimension.
	MetricDimensionScore = "dimension_score"
	// MetricIntegrityPenalty observes integrity penalties, labelled by category.
	MetricIntegrityPenalty = "integrity_penalty"
	// MetricBatchInFlight is the number of candidates of the running batch.
	MetricBatchInFlight = "batch_in_flight"
)
