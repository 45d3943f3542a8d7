// Package units provides the scoring stages that implement the ports.Unit
// interface: normalize, competence, integrity, transparency and compose.
// Every unit exposes its pure calculation as a method so it can be tested
// and audited without a pipeline, plus Execute for pipeline use.
package units

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// Unit type names as registered with the unit registry.
const (
	TypeNormalize    = "normalize"
	TypeCompetence   = "competence"
	TypeIntegrity    = "integrity"
	TypeTransparency = "transparency"
	TypeCompose      = "compose"
)

// Common errors returned by the scoring units.
var (
	// ErrEmptyUnitName is returned when attempting to create a unit with an empty name.
	ErrEmptyUnitName = errors.New("unit name cannot be empty")

	// ErrInvalidReferenceYear is returned when the reference year in state is not positive.
	ErrInvalidReferenceYear = errors.New("reference year must be positive")
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// decodeParams overlays params onto cfg, which must already hold the
// defaults. Unknown keys are rejected.
func decodeParams(params map[string]any, cfg any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// failSpan records err on span and marks it failed.
func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
