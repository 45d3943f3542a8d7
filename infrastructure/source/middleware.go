package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// ErrCircuitOpen is returned by a circuit-broken source while it rejects
// fetches.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Middleware wraps a CandidateSource with additional fetch behavior.
type Middleware func(ports.CandidateSource) ports.CandidateSource

// Chain applies middleware so that the first one listed is outermost.
func Chain(src ports.CandidateSource, mws ...Middleware) ports.CandidateSource {
	for i := len(mws) - 1; i >= 0; i-- {
		src = mws[i](src)
	}
	return src
}

// fetchFunc adapts a Fetch override onto an inner source.
type fetchFunc struct {
	ports.CandidateSource
	fetch func(ctx context.Context, id string) (domain.CandidateRecord, error)
}

func (f fetchFunc) Fetch(ctx context.Context, id string) (domain.CandidateRecord, error) {
	return f.fetch(ctx, id)
}

// TimeoutMiddleware bounds each Fetch call by d.
func TimeoutMiddleware(d time.Duration) Middleware {
	return func(next ports.CandidateSource) ports.CandidateSource {
		return fetchFunc{
			CandidateSource: next,
			fetch: func(ctx context.Context, id string) (domain.CandidateRecord, error) {
				ctx, cancel := context.WithTimeout(ctx, d)
				defer cancel()
				rec, err := next.Fetch(ctx, id)
				if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return domain.CandidateRecord{}, ports.NewSourceError("timeout", id, fmt.Errorf("%w: %w", ports.ErrTimeout, err))
				}
				return rec, err
			},
		}
	}
}

// RetryMiddleware retries fetches that fail with a retryable SourceError,
// backing off exponentially from baseDelay up to maxDelay with jitter.
// Other failures are returned immediately.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next ports.CandidateSource) ports.CandidateSource {
		return fetchFunc{
			CandidateSource: next,
			fetch: func(ctx context.Context, id string) (domain.CandidateRecord, error) {
				var lastErr error
				for attempt := 0; attempt <= maxRetries; attempt++ {
					rec, err := next.Fetch(ctx, id)
					if err == nil {
						return rec, nil
					}
					lastErr = err
					if !retryable(err) || ctx.Err() != nil || attempt == maxRetries {
						break
					}

					timer := time.NewTimer(backoff(attempt, baseDelay, maxDelay))
					select {
					case <-ctx.Done():
						timer.Stop()
						return domain.CandidateRecord{}, ctx.Err()
					case <-timer.C:
					}
				}
				return domain.CandidateRecord{}, lastErr
			},
		}
	}
}

func retryable(err error) bool {
	var serr *ports.SourceError
	return errors.As(err, &serr) && serr.IsRetryable()
}

func backoff(attempt int, base, ceiling time.Duration) time.Duration {
	attempt = min(max(attempt, 0), 30)
	delay := base << attempt
	if delay <= 0 || delay > ceiling {
		delay = ceiling
	}
	// ±25% jitter.
	// #nosec G404 - jitter does not need a cryptographic source
	delay += time.Duration((rand.Float64() - 0.5) * 0.5 * float64(delay))
	return min(delay, ceiling)
}

// BreakerState is the state of a CircuitBreaker.
type BreakerState int

const (
	// StateClosed lets every fetch through.
	StateClosed BreakerState = iota
	// StateOpen rejects fetches until the cooldown expires.
	StateOpen
	// StateHalfOpen lets one trial fetch through.
	StateHalfOpen
)

// CircuitBreaker opens after maxFailures consecutive failures and stays
// open for the cooldown before a trial fetch is allowed.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	maxFailures int
	cooldown    time.Duration
	lastFailure time.Time
	now         func() time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: max(maxFailures, 1),
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow reports whether a fetch may proceed, moving an expired open
// breaker to half-open.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) < cb.cooldown {
			return false
		}
		cb.state = StateHalfOpen
	}
	return true
}

// record updates the breaker with a fetch outcome. Only transient
// failures count; a missing or rejected record is an answer, not an
// outage.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil || !retryable(err) {
		cb.failures = 0
		cb.state = StateClosed
		return
	}
	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// CircuitBreakerMiddleware routes fetches through cb.
func CircuitBreakerMiddleware(cb *CircuitBreaker) Middleware {
	return func(next ports.CandidateSource) ports.CandidateSource {
		return fetchFunc{
			CandidateSource: next,
			fetch: func(ctx context.Context, id string) (domain.CandidateRecord, error) {
				if !cb.allow() {
					return domain.CandidateRecord{}, ports.NewSourceError("breaker", id, fmt.Errorf("%w: %w", ErrCircuitOpen, ports.ErrSourceUnavailable))
				}
				rec, err := next.Fetch(ctx, id)
				if ctx.Err() == nil {
					cb.record(err)
				}
				return rec, err
			},
		}
	}
}
