// Package source reads candidate records from JSON and JSON-lines files and
// writes score results back out. It implements ports.CandidateSource and
// ports.ResultSink for the batch driver and the CLI.
package source

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.CandidateSource = (*FileSource)(nil)

// Format selects how records are framed in a file.
type Format string

const (
	// FormatJSON is a single JSON array of records.
	FormatJSON Format = "json"
	// FormatJSONL is one JSON record per line.
	FormatJSONL Format = "jsonl"
)

var (
	// ErrUnknownFormat is returned for a format other than json or jsonl.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrDuplicateCandidate is wrapped by the RecordError of a record
	// reusing an id already listed.
	ErrDuplicateCandidate = errors.New("duplicate candidate id")

	// ErrSchemaViolation is wrapped by RecordError when a record does not
	// match the candidate schema.
	ErrSchemaViolation = errors.New("record does not match candidate schema")
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL, "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension. Anything other
// than .jsonl or .ndjson is read as a JSON array.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatJSON
	}
}

//go:embed candidate.schema.json
var candidateSchemaJSON []byte

var candidateSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(candidateSchemaJSON))
})

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// RecordError reports a record that could not be loaded. Index is the
// zero-based position in a JSON array or the one-based line in JSON-lines.
type RecordError struct {
	Source string
	Index  int
	Fields []FieldError
	Err    error
}

// Error implements the error interface for RecordError.
func (e *RecordError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: record %d: %v", e.Source, e.Index, e.Err)
	for _, f := range e.Fields {
		fmt.Fprintf(&sb, "; %s: %s", f.Field, f.Message)
	}
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *RecordError) Unwrap() error { return e.Err }

// Option configures a FileSource.
type Option func(*options)

type options struct {
	validateSchema bool
}

// WithSchemaValidation toggles checking every record against the embedded
// candidate JSON schema before decoding. It is enabled by default.
func WithSchemaValidation(enabled bool) Option {
	return func(o *options) { o.validateSchema = enabled }
}

// FileSource serves candidate records loaded from a file. Records are
// held in memory and listed in file order. Records that could not be
// loaded are listed too; fetching one returns its RecordError.
type FileSource struct {
	name     string
	ids      []string
	records  map[string]domain.CandidateRecord
	rejected map[string]*RecordError
}

// Open loads the file at path, choosing the format from its extension.
func Open(path string, opts ...Option) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates: %w", err)
	}
	defer f.Close()

	return Read(path, f, FormatFromPath(path), opts...)
}

// Read loads every record from r. name identifies the source in errors.
// Only an unreadable file fails the load. A malformed, invalid or
// duplicate record is kept as a rejected entry under its id, or under
// "#<index>" when it has no usable id, so the batch driver reports it as
// a failed fetch instead of losing the rest of the file.
func Read(name string, r io.Reader, format Format, opts ...Option) (*FileSource, error) {
	o := options{validateSchema: true}
	for _, opt := range opts {
		opt(&o)
	}

	var raws []json.RawMessage
	var offset int
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&raws); err != nil {
			return nil, fmt.Errorf("%s: decode array: %w", name, err)
		}
	case FormatJSONL:
		var err error
		if raws, err = readLines(r); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		offset = 1
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var schema *gojsonschema.Schema
	if o.validateSchema {
		var err error
		if schema, err = candidateSchema(); err != nil {
			return nil, fmt.Errorf("compile candidate schema: %w", err)
		}
	}

	s := &FileSource{
		name:     name,
		records:  make(map[string]domain.CandidateRecord, len(raws)),
		rejected: make(map[string]*RecordError),
	}
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		index := i + offset
		rec, recErr := decodeRecord(schema, raw)
		if recErr != nil {
			recErr.Source, recErr.Index = name, index
			s.reject(rawID(raw), recErr)
			continue
		}
		if s.listed(rec.ID) {
			s.reject("", &RecordError{Source: name, Index: index, Err: fmt.Errorf("%w: %s", ErrDuplicateCandidate, rec.ID)})
			continue
		}
		s.ids = append(s.ids, rec.ID)
		s.records[rec.ID] = rec
	}
	return s, nil
}

func decodeRecord(schema *gojsonschema.Schema, raw json.RawMessage) (domain.CandidateRecord, *RecordError) {
	if schema != nil {
		if err := checkSchema(schema, raw); err != nil {
			return domain.CandidateRecord{}, err
		}
	}
	var rec domain.CandidateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CandidateRecord{}, &RecordError{Err: err}
	}
	if rec.ID == "" {
		return domain.CandidateRecord{}, &RecordError{Err: errors.New("missing candidate id")}
	}
	return rec, nil
}

// rawID extracts a string id from a record that failed to load, if any.
func rawID(raw json.RawMessage) string {
	var head struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	id, _ := head.ID.(string)
	return id
}

func (s *FileSource) listed(id string) bool {
	_, ok := s.records[id]
	_, bad := s.rejected[id]
	return ok || bad
}

func (s *FileSource) reject(id string, err *RecordError) {
	if id == "" || s.listed(id) {
		id = fmt.Sprintf("#%d", err.Index)
	}
	s.ids = append(s.ids, id)
	s.rejected[id] = err
}

// readLines splits JSON-lines input. Blank lines are kept as nil entries
// so line numbers stay aligned.
func readLines(r io.Reader) ([]json.RawMessage, error) {
	var lines []json.RawMessage
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			lines = append(lines, json.RawMessage(trimmed))
		} else if len(line) > 0 {
			lines = append(lines, nil)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", len(lines)+1, err)
		}
	}
}

func checkSchema(schema *gojsonschema.Schema, raw json.RawMessage) *RecordError {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &RecordError{Err: err}
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, FieldError{Field: field, Message: desc.Description()})
	}
	return &RecordError{Fields: fields, Err: ErrSchemaViolation}
}

// Name returns the name the source was loaded under.
func (s *FileSource) Name() string { return s.name }

// Len returns the number of records loaded successfully.
func (s *FileSource) Len() int { return len(s.records) }

// Rejected returns the records that could not be loaded, in file order.
func (s *FileSource) Rejected() []*RecordError {
	out := make([]*RecordError, 0, len(s.rejected))
	for _, err := range s.rejected {
		out = append(out, err)
	}
	slices.SortFunc(out, func(a, b *RecordError) int { return a.Index - b.Index })
	return out
}

// IDs implements ports.CandidateSource.
func (s *FileSource) IDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.ids), nil
}

// Fetch implements ports.CandidateSource.
func (s *FileSource) Fetch(ctx context.Context, id string) (domain.CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.CandidateRecord{}, err
	}
	if recErr, bad := s.rejected[id]; bad {
		return domain.CandidateRecord{}, ports.NewSourceError(s.name, id, recErr)
	}
	rec, ok := s.records[id]
	if !ok {
		return domain.CandidateRecord{}, ports.NewSourceError(s.name, id,
			fmt.Errorf("%w: %s", ports.ErrCandidateNotFound, id))
	}
	return rec, nil
}
