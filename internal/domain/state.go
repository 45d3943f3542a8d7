// Package domain contains pure, dependency-free domain models and types
// for the candidate scoring engine.
package domain

import (
	"fmt"
	"maps"
	"reflect"
	"time"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
// This function is provided for creating keys outside of the domain package.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Predefined state keys used throughout a scoring pass. Each key is
// strongly typed so units never perform runtime type assertions.
var (
	// KeyCandidate stores the raw candidate record being scored.
	KeyCandidate = Key[CandidateRecord]{"candidate"}

	// KeyReferenceYear stores the year used for ongoing intervals and
	// consistency checks.
	KeyReferenceYear = Key[int]{"reference_year"}

	// KeyCustomWeights stores an optional user-supplied blend.
	KeyCustomWeights = Key[Weights]{"custom_weights"}

	// KeyNormalized stores the output of the normalize stage.
	KeyNormalized = Key[NormalizedCandidate]{"normalized"}

	// KeyCompetence, KeyIntegrity, KeyTransparency and KeyConfidence store
	// the per-dimension breakdowns.
	KeyCompetence   = Key[CompetenceBreakdown]{"competence"}
	KeyIntegrity    = Key[IntegrityBreakdown]{"integrity"}
	KeyTransparency = Key[TransparencyBreakdown]{"transparency"}
	KeyConfidence   = Key[ConfidenceBreakdown]{"confidence"}

	// KeyResult stores the composed result.
	KeyResult = Key[ScoreResult]{"result"}

	// KeyPipelineID stores the identifier of the pipeline being executed.
	KeyPipelineID = Key[string]{"execution.pipeline_id"}

	// KeyExecutionID stores a unique identifier for this scoring pass,
	// useful for tracing and correlation.
	KeyExecutionID = Key[string]{"execution.execution_id"}

	// KeyRubricVersion stores the version of the rubric in effect.
	KeyRubricVersion = Key[string]{"execution.rubric_version"}
)

// Name returns the key's string name.
func (k Key[T]) Name() string { return k.name }

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of State data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	// time.Time is immutable and can be returned directly.
	if val, ok := value.(time.Time); ok {
		return val
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return value
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Cap())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(reflect.ValueOf(deepCopyValue(v.Index(i).Interface())))
		}
		return newSlice.Interface()

	case reflect.Map:
		if v.IsNil() {
			return value
		}
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedKey := deepCopyValue(key.Interface())
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			newMap.SetMapIndex(reflect.ValueOf(copiedKey), reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	case reflect.Struct:
		// Exported fields are deep copied; unexported fields are left zero.
		newStruct := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if newStruct.Field(i).CanSet() {
				newStruct.Field(i).Set(reflect.ValueOf(deepCopyValue(v.Field(i).Interface())))
			}
		}
		return newStruct.Interface()

	default:
		// Primitive types are returned as-is since they are copied by value.
		return value
	}
}

// State represents an immutable collection of scoring data that flows
// through the pipeline. It uses copy-on-write semantics to ensure
// thread-safety and prevent unintended mutations. State is the primary
// data structure for passing information between Units.
type State struct {
	// data holds the key-value pairs that make up the state.
	// It is unexported to maintain immutability guarantees.
	data map[string]any
}

// NewState creates a new empty State.
// The returned State is ready to use and can be safely shared across
// goroutines.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	record, ok := Get(state, KeyCandidate)
//	if !ok {
//	    // handle missing value
//	}
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// GetRaw is a method version of Get that uses a string key.
// For type safety, use the generic Get function instead.
func (s State) GetRaw(keyName string) (any, bool) {
	value, exists := s.data[keyName]
	if !exists {
		return nil, false
	}
	return deepCopyValue(value), true
}

// With creates a new State with the specified key-value pair added or
// updated. It implements copy-on-write semantics, returning a new State
// instance while leaving the original unchanged. This function is the
// primary way to add or update data in a State.
//
// Example:
//
//	newState := With(state, KeyReferenceYear, 2026)
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// WithRaw is a method version of With that uses a string key and allows
// chaining. For type safety, use the generic With function instead.
func (s State) WithRaw(keyName string, value any) State {
	newData := maps.Clone(s.data)
	newData[keyName] = deepCopyValue(value)
	return State{data: newData}
}

// WithMultiple creates a new State with multiple key-value pairs added
// or updated. It is more efficient than chaining multiple With calls as
// it performs a single clone operation. The updates map uses string keys
// for flexibility when updating multiple values at once.
//
// Example:
//
//	updates := map[string]any{
//	    KeyReferenceYear.Name(): 2026,
//	    KeyCandidate.Name():     record,
//	}
//	newState := state.WithMultiple(updates)
func (s State) WithMultiple(updates map[string]any) State {
	newData := maps.Clone(s.data)
	for k, v := range updates {
		newData[k] = deepCopyValue(v)
	}
	return State{data: newData}
}

// Keys returns all keys present in the State.
// The returned slice can be used to iterate over all stored values and
// is safe to modify without affecting the original State.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}

// ExecutionContext contains metadata about the current scoring pass that
// flows through the State. Middleware reads it for spans and metrics.
type ExecutionContext struct {
	// PipelineID identifies the pipeline being executed.
	PipelineID string

	// ExecutionID identifies this specific pass.
	ExecutionID string

	// RubricVersion is the version of the rubric in effect.
	RubricVersion string
}

// WithExecutionContext returns a new State carrying the execution metadata.
func (s State) WithExecutionContext(ctx ExecutionContext) State {
	return s.WithMultiple(map[string]any{
		KeyPipelineID.name:    ctx.PipelineID,
		KeyExecutionID.name:   ctx.ExecutionID,
		KeyRubricVersion.name: ctx.RubricVersion,
	})
}

// GetExecutionContext extracts execution metadata from the State. It
// reports false unless every field is present.
func (s State) GetExecutionContext() (ExecutionContext, bool) {
	pipelineID, ok1 := Get(s, KeyPipelineID)
	executionID, ok2 := Get(s, KeyExecutionID)
	version, ok3 := Get(s, KeyRubricVersion)
	if !ok1 || !ok2 || !ok3 {
		return ExecutionContext{}, false
	}
	return ExecutionContext{
		PipelineID:    pipelineID,
		ExecutionID:   executionID,
		RubricVersion: version,
	}, true
}

// Require retrieves a value that a unit depends on, returning a StateError
// wrapping ErrKeyNotFound when it is absent.
func Require[T any](s State, key Key[T]) (T, error) {
	v, ok := Get(s, key)
	if !ok {
		var zero T
		return zero, NewStateError(key.name, "Require", ErrKeyNotFound)
	}
	return v, nil
}
