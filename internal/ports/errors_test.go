package ports

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := NewSourceError("jsonl", "c-1", ErrCandidateNotFound)

		assert.Equal(t, "source error: source=jsonl, candidate=c-1, err=candidate not found", err.Error())
		assert.True(t, errors.Is(err, ErrCandidateNotFound))
	})

	t.Run("retryable errors", func(t *testing.T) {
		for _, base := range []error{ErrRateLimited, ErrSourceUnavailable, ErrTimeout} {
			err := NewSourceError("remote", "c-1", fmt.Errorf("fetch: %w", base))
			assert.True(t, err.IsRetryable(), "%v should be retryable", base)
		}

		for _, base := range []error{ErrCandidateNotFound, errors.New("malformed json")} {
			err := NewSourceError("remote", "c-1", base)
			assert.False(t, err.IsRetryable(), "%v should not be retryable", base)
		}
	})
}

func TestScoringError(t *testing.T) {
	cause := errors.New("boom")
	err := NewScoringError("c-9", "integrity", cause)

	assert.Equal(t, "scoring error: candidate=c-9, stage=integrity, err=boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var target *ScoringError
	assert.True(t, errors.As(fmt.Errorf("batch: %w", err), &target))
	assert.Equal(t, "integrity", target.Stage)
}

func TestMetricsError(t *testing.T) {
	err := NewMetricsError("candidates_scored_total", "RecordCounter", errors.New("collector unavailable"))

	assert.Equal(t, "metrics error: operation=RecordCounter, metric=candidates_scored_total, err=collector unavailable", err.Error())
	assert.NotNil(t, errors.Unwrap(err))
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("rubric_path", ErrConfigNotFound)

	assert.Equal(t, "config error: key=rubric_path, err=configuration not found", err.Error())
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestCommonInfrastructureErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{ErrCandidateNotFound, "candidate not found"},
		{ErrRateLimited, "rate limited"},
		{ErrSourceUnavailable, "source unavailable"},
		{ErrTimeout, "operation timed out"},
		{ErrSinkClosed, "sink closed"},
		{ErrConfigNotFound, "configuration not found"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}
