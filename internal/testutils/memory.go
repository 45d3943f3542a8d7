package testutils

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var (
	_ ports.CandidateSource = (*MemorySource)(nil)
	_ ports.ResultSink      = (*MemorySink)(nil)
)

// MemorySource serves records from memory. Errors registered with FailOn
// are returned instead of the record.
type MemorySource struct {
	mu       sync.Mutex
	ids      []string
	records  map[string]domain.CandidateRecord
	failures map[string]error
	fetches  int
}

// NewMemorySource creates a source over records, listed in the given order.
func NewMemorySource(records ...domain.CandidateRecord) *MemorySource {
	s := &MemorySource{
		records:  make(map[string]domain.CandidateRecord, len(records)),
		failures: make(map[string]error),
	}
	for _, r := range records {
		s.ids = append(s.ids, r.ID)
		s.records[r.ID] = r
	}
	return s
}

// FailOn makes Fetch of id return err.
func (s *MemorySource) FailOn(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = err
}

// IDs implements ports.CandidateSource.
func (s *MemorySource) IDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids), nil
}

// Fetch implements ports.CandidateSource.
func (s *MemorySource) Fetch(ctx context.Context, id string) (domain.CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.CandidateRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++

	if err, ok := s.failures[id]; ok {
		return domain.CandidateRecord{}, ports.NewSourceError("memory", id, err)
	}
	r, ok := s.records[id]
	if !ok {
		return domain.CandidateRecord{}, ports.NewSourceError("memory", id, fmt.Errorf("%w: %s", ports.ErrCandidateNotFound, id))
	}
	return r, nil
}

// Fetches returns the number of Fetch calls so far.
func (s *MemorySource) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

// MemorySink collects results in memory.
type MemorySink struct {
	mu       sync.Mutex
	results  map[string]domain.ScoreResult
	failures map[string]error
	closed   bool
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		results:  make(map[string]domain.ScoreResult),
		failures: make(map[string]error),
	}
}

// FailOn makes Write of the result for id return err.
func (s *MemorySink) FailOn(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = err
}

// Write implements ports.ResultSink.
func (s *MemorySink) Write(_ context.Context, result domain.ScoreResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrSinkClosed
	}
	if err, ok := s.failures[result.CandidateID]; ok {
		return err
	}
	s.results[result.CandidateID] = result
	return nil
}

// Close implements ports.ResultSink.
func (s *MemorySink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Result returns the result written for id.
func (s *MemorySink) Result(id string) (domain.ScoreResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok
}

// Len returns the number of results written.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Closed reports whether Close was called.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
