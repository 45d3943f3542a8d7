package source

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.ResultSink = (*JSONSink)(nil)

// JSONSink writes score results as JSON. In FormatJSONL every result is
// written as it arrives; in FormatJSON results are buffered and written on
// Close as one array ordered by candidate id, so the file does not depend
// on worker scheduling.
type JSONSink struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	format  Format
	pending []domain.ScoreResult
	written int
	closed  bool
}

// NewJSONSink creates a sink over w. The caller keeps ownership of w.
func NewJSONSink(w io.Writer, format Format) (*JSONSink, error) {
	if format != FormatJSON && format != FormatJSONL {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &JSONSink{w: w, format: format}, nil
}

// Create creates (or truncates) the file at path and returns a sink that
// closes it on Close.
func Create(path string, format Format) (*JSONSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create results: %w", err)
	}
	s, err := NewJSONSink(f, format)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	s.closer = f
	return s, nil
}

// Write implements ports.ResultSink.
func (s *JSONSink) Write(ctx context.Context, result domain.ScoreResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ports.ErrSinkClosed
	}

	if s.format == FormatJSON {
		s.pending = append(s.pending, result)
		return nil
	}
	if err := json.NewEncoder(s.w).Encode(result); err != nil {
		return fmt.Errorf("write result %s: %w", result.CandidateID, err)
	}
	s.written++
	return nil
}

// Written returns the number of results accepted so far.
func (s *JSONSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written + len(s.pending)
}

// Close implements ports.ResultSink. Closing twice is a no-op.
func (s *JSONSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.format == FormatJSON {
		slices.SortFunc(s.pending, func(a, b domain.ScoreResult) int {
			return cmp.Compare(a.CandidateID, b.CandidateID)
		})
		results := s.pending
		if results == nil {
			results = []domain.ScoreResult{}
		}

		enc := json.NewEncoder(s.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			errs = append(errs, fmt.Errorf("write results: %w", err))
		} else {
			s.written += len(s.pending)
			s.pending = nil
		}
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
	}
	return errors.Join(errs...)
}
