package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/infrastructure/middleware"
	"github.com/ahrav/go-ballot/infrastructure/units"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// PipelineID identifies the scoring pipeline in execution metadata.
const PipelineID = "score"

// Engine scores one candidate at a time. It runs normalize, then the
// competence, integrity and transparency stages in parallel, then compose.
// An Engine holds no per-candidate state and is safe for concurrent use.
type Engine struct {
	rubric        domain.Rubric
	pipeline      *Pipeline
	referenceYear int
	tracer        trace.Tracer
}

type engineOptions struct {
	logger        *slog.Logger
	metrics       ports.MetricsCollector
	observer      middleware.StageObserver
	registry      ports.UnitRegistry
	referenceYear int
	unitParams    map[string]map[string]any
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = l }
}

// WithMetrics sets the collector the default stage observer reports to.
func WithMetrics(m ports.MetricsCollector) EngineOption {
	return func(o *engineOptions) { o.metrics = m }
}

// WithStageObserver replaces the default OpenTelemetry stage observer.
func WithStageObserver(obs middleware.StageObserver) EngineOption {
	return func(o *engineOptions) { o.observer = obs }
}

// WithRegistry sets the registry the stages are built from.
func WithRegistry(r ports.UnitRegistry) EngineOption {
	return func(o *engineOptions) { o.registry = r }
}

// WithReferenceYear fixes the year used to close ongoing intervals. Zero
// selects the current year when the engine is built.
func WithReferenceYear(year int) EngineOption {
	return func(o *engineOptions) { o.referenceYear = year }
}

// WithUnitParams passes configuration parameters to the stage of the given
// type. Later calls for the same type are merged over earlier ones.
func WithUnitParams(unitType string, params map[string]any) EngineOption {
	return func(o *engineOptions) {
		if o.unitParams[unitType] == nil {
			o.unitParams[unitType] = make(map[string]any, len(params))
		}
		for k, v := range params {
			o.unitParams[unitType][k] = v
		}
	}
}

// NewEngine assembles the scoring pipeline for rubric. The rubric must
// already be valid; RubricLoader and DefaultRubric both guarantee that.
func NewEngine(rubric domain.Rubric, opts ...EngineOption) (*Engine, error) {
	o := engineOptions{unitParams: make(map[string]map[string]any)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.registry == nil {
		o.registry = NewDefaultUnitRegistry()
	}
	if o.observer == nil {
		o.observer = middleware.NewOTelStageObserver(o.metrics)
	}
	if o.referenceYear == 0 {
		o.referenceYear = time.Now().Year()
	}

	build := func(unitType string) (ports.Executable, error) {
		unit, err := o.registry.CreateUnit(unitType, unitType, rubric, o.unitParams[unitType])
		if err != nil {
			return nil, err
		}
		return NewUnitAdapter(middleware.NewObservedUnit(unit, o.observer), unitType), nil
	}

	pipeline := NewPipeline(PipelineID)
	dimensions := NewLayer("dimensions")
	dimensions.SetMergeStrategy(KeyUnionMerge{})

	stages := []struct {
		unitType string
		into     interface{ Add(ports.Executable) error }
	}{
		{units.TypeNormalize, pipeline},
		{units.TypeCompetence, dimensions},
		{units.TypeIntegrity, dimensions},
		{units.TypeTransparency, dimensions},
	}
	for _, s := range stages {
		exec, err := build(s.unitType)
		if err != nil {
			return nil, fmt.Errorf("build %s stage: %w", s.unitType, err)
		}
		if err := s.into.Add(exec); err != nil {
			return nil, err
		}
	}
	if err := pipeline.Add(dimensions); err != nil {
		return nil, err
	}
	compose, err := build(units.TypeCompose)
	if err != nil {
		return nil, fmt.Errorf("build %s stage: %w", units.TypeCompose, err)
	}
	if err := pipeline.Add(compose); err != nil {
		return nil, err
	}

	o.logger.Debug("scoring engine ready",
		"rubric", rubric.Name,
		"rubric_version", rubric.Version,
		"reference_year", o.referenceYear,
	)

	return &Engine{
		rubric:        rubric,
		pipeline:      pipeline,
		referenceYear: o.referenceYear,
		tracer:        otel.Tracer("scoring-engine"),
	}, nil
}

// NewEngineFromConfig builds an engine with the reference year, default
// cargo and precision taken from cfg. opts are applied afterwards.
func NewEngineFromConfig(cfg Config, rubric domain.Rubric, opts ...EngineOption) (*Engine, error) {
	base := []EngineOption{WithReferenceYear(cfg.ReferenceYear)}
	if cfg.DefaultCargo != "" {
		base = append(base, WithUnitParams(units.TypeNormalize, map[string]any{"default_cargo": cfg.DefaultCargo}))
	}
	base = append(base, WithUnitParams(units.TypeCompose, map[string]any{"precision": cfg.Precision}))
	return NewEngine(rubric, append(base, opts...)...)
}

// Rubric returns the rubric the engine scores with.
func (e *Engine) Rubric() domain.Rubric { return e.rubric }

// ReferenceYear returns the year used to close ongoing intervals.
func (e *Engine) ReferenceYear() int { return e.referenceYear }

// Pipeline returns the assembled stage pipeline.
func (e *Engine) Pipeline() *Pipeline { return e.pipeline }

// ScoreOption adjusts a single Score call.
type ScoreOption func(*scoreOptions)

type scoreOptions struct {
	custom      *domain.Weights
	executionID string
}

// WithCustomWeights adds a custom blend computed from w after clamping to
// the rubric's bounds.
func WithCustomWeights(w domain.Weights) ScoreOption {
	return func(o *scoreOptions) { o.custom = &w }
}

// WithExecutionID sets the execution identifier recorded in the state. A
// random UUID is used otherwise.
func WithExecutionID(id string) ScoreOption {
	return func(o *scoreOptions) { o.executionID = id }
}

// Score runs the pipeline for record. Malformed record data never fails;
// an error means the context was cancelled or the pipeline is miswired.
func (e *Engine) Score(ctx context.Context, record domain.CandidateRecord, opts ...ScoreOption) (domain.ScoreResult, error) {
	var so scoreOptions
	for _, opt := range opts {
		opt(&so)
	}
	if so.executionID == "" {
		so.executionID = uuid.NewString()
	}

	ctx, span := e.tracer.Start(ctx, "Engine.Score",
		trace.WithAttributes(
			attribute.String("candidate.id", record.ID),
			attribute.String("execution.id", so.executionID),
			attribute.String("rubric.version", e.rubric.Version),
		),
	)
	defer span.End()

	state := domain.NewState()
	state = domain.With(state, domain.KeyCandidate, record)
	state = domain.With(state, domain.KeyReferenceYear, e.referenceYear)
	if so.custom != nil {
		state = domain.With(state, domain.KeyCustomWeights, *so.custom)
	}
	state = state.WithExecutionContext(domain.ExecutionContext{
		PipelineID:    PipelineID,
		ExecutionID:   so.executionID,
		RubricVersion: e.rubric.Version,
	})

	out, err := e.pipeline.Execute(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ScoreResult{}, err
	}

	result, err := domain.Require(out, domain.KeyResult)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ScoreResult{}, err
	}

	span.SetAttributes(
		attribute.String("candidate.cargo", string(result.Cargo)),
		attribute.Float64("score.competence", result.Scores.Competence),
		attribute.Float64("score.integrity", result.Scores.Integrity),
		attribute.Float64("score.transparency", result.Scores.Transparency),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}
