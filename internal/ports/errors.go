package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors raised around the scoring core.
var (
	// ErrCandidateNotFound indicates that a source has no record for an id.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrRateLimited indicates that the source refused the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrSourceUnavailable indicates that the candidate source is unavailable.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrSinkClosed indicates a write to a closed result sink.
	ErrSinkClosed = errors.New("sink closed")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// SourceError represents a failure while fetching a candidate.
type SourceError struct {
	// Source names the candidate source.
	Source string

	// CandidateID is the candidate being fetched, if any.
	CandidateID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for SourceError.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source error: source=%s, candidate=%s, err=%v", e.Source, e.CandidateID, e.Err)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error { return e.Err }

// IsRetryable reports whether the failure is transient.
func (e *SourceError) IsRetryable() bool {
	return errors.Is(e.Err, ErrRateLimited) ||
		errors.Is(e.Err, ErrSourceUnavailable) ||
		errors.Is(e.Err, ErrTimeout)
}

// NewSourceError creates a new SourceError with the given details.
func NewSourceError(source, candidateID string, err error) *SourceError {
	return &SourceError{
		Source:      source,
		CandidateID: candidateID,
		Err:         err,
	}
}

// ScoringError records which stage failed for which candidate.
type ScoringError struct {
	CandidateID string
	Stage       string
	Err         error
}

// Error implements the error interface for ScoringError.
func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring error: candidate=%s, stage=%s, err=%v", e.CandidateID, e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScoringError) Unwrap() error { return e.Err }

// NewScoringError creates a new ScoringError with the given details.
func NewScoringError(candidateID, stage string, err error) *ScoringError {
	return &ScoringError{
		CandidateID: candidateID,
		Stage:       stage,
		Err:         err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric being collected.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key involved.
	ConfigKey string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
