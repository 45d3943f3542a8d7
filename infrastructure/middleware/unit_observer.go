package middleware

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*ObservedUnit)(nil)

// StageObserver provides observability hooks around a unit execution.
// Implementations can add tracing, metrics and logging without coupling
// those concerns to the scoring units.
type StageObserver interface {
	// Before is called before the unit runs. The returned context is passed
	// to the unit and to After.
	Before(ctx context.Context, unit string) context.Context

	// After is called once the unit returns, with the state it received,
	// the state it produced and how long it took.
	After(ctx context.Context, unit string, in, out domain.State, elapsed time.Duration, err error)
}

// ObservedUnit decorates a unit with a StageObserver. It keeps no mutable
// state and is safe for concurrent use when the observer is.
type ObservedUnit struct {
	next     ports.Unit
	observer StageObserver
}

// NewObservedUnit wraps next. It panics when next or observer is nil since
// both are wiring errors.
func NewObservedUnit(next ports.Unit, observer StageObserver) *ObservedUnit {
	if next == nil {
		panic("observed unit: next unit is required")
	}
	if observer == nil {
		panic("observed unit: observer is required")
	}
	return &ObservedUnit{next: next, observer: observer}
}

// Name returns the wrapped unit's name so pipelines and logs see the stage
// rather than the decorator.
func (o *ObservedUnit) Name() string { return o.next.Name() }

// Execute runs the wrapped unit between the observer hooks.
func (o *ObservedUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	name := o.next.Name()
	ctx = o.observer.Before(ctx, name)

	start := time.Now()
	out, err := o.next.Execute(ctx, state)
	o.observer.After(ctx, name, state, out, time.Since(start), err)

	return out, err
}

// Validate delegates to the wrapped unit.
func (o *ObservedUnit) Validate() error {
	if err := o.next.Validate(); err != nil {
		return fmt.Errorf("wrapped unit validation failed: %w", err)
	}
	return nil
}

// Unwrap returns the decorated unit.
func (o *ObservedUnit) Unwrap() ports.Unit { return o.next }

var _ StageObserver = (*OTelStageObserver)(nil)

// OTelStageObserver traces every stage with OpenTelemetry and reports
// latency, failures and the scores a stage produced to a MetricsCollector.
type OTelStageObserver struct {
	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// NewOTelStageObserver creates an observer. metrics may be nil, in which
// case only spans are recorded.
func NewOTelStageObserver(metrics ports.MetricsCollector) *OTelStageObserver {
	return &OTelStageObserver{
		metrics: metrics,
		tracer:  otel.Tracer("stage-observer"),
	}
}

// Before implements StageObserver by starting the stage span.
func (o *OTelStageObserver) Before(ctx context.Context, unit string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "Stage."+unit,
		trace.WithAttributes(attribute.String("stage.unit", unit)),
	)
	return ctx
}

// After implements StageObserver. It ends the span opened by Before.
func (o *OTelStageObserver) After(
	ctx context.Context,
	unit string,
	in, out domain.State,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("stage.duration_us", elapsed.Microseconds()))
	span.SetAttributes(executionAttributes(in)...)
	if o.metrics != nil {
		o.metrics.RecordLatency("stage", elapsed, map[string]string{"unit": unit})
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if o.metrics != nil {
			o.metrics.RecordCounter(ports.MetricStageFailures, 1, map[string]string{"unit": unit})
		}
		return
	}

	o.recordProduced(span, in, out)
	span.SetStatus(codes.Ok, "stage completed")
}

// executionAttributes tags a stage span with the pass it belongs to.
func executionAttributes(state domain.State) []attribute.KeyValue {
	ec, ok := state.GetExecutionContext()
	if !ok {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String("execution.id", ec.ExecutionID),
		attribute.String("rubric.version", ec.RubricVersion),
		attribute.String("pipeline.id", ec.PipelineID),
	}
}

// recordProduced reports the dimension breakdowns that appear in out but
// not in in, so a score is counted once by the stage that computed it.
func (o *OTelStageObserver) recordProduced(span trace.Span, in, out domain.State) {
	observe := func(dimension string, score float64) {
		span.SetAttributes(attribute.Float64("score."+dimension, score))
		if o.metrics != nil {
			o.metrics.RecordHistogram(ports.MetricDimensionScore, score, map[string]string{"dimension": dimension})
		}
	}

	if b, ok := produced(in, out, domain.KeyCompetence); ok {
		observe("competence", b.Score)
	}
	if b, ok := produced(in, out, domain.KeyIntegrity); ok {
		observe("integrity", b.Score)
		for _, c := range b.Categories() {
			if c.Penalty.Value == 0 {
				continue
			}
			span.AddEvent("integrity.penalty", trace.WithAttributes(
				attribute.String("category", c.Category),
				attribute.Float64("points", c.Penalty.Value),
			))
			if o.metrics != nil {
				o.metrics.RecordHistogram(ports.MetricIntegrityPenalty, c.Penalty.Value,
					map[string]string{"category": c.Category})
			}
		}
	}
	if b, ok := produced(in, out, domain.KeyTransparency); ok {
		observe("transparency", b.Score)
	}
	if b, ok := produced(in, out, domain.KeyConfidence); ok {
		observe("confidence", b.Score)
	}
}

func produced[T any](in, out domain.State, key domain.Key[T]) (T, bool) {
	if _, seen := domain.Get(in, key); seen {
		var zero T
		return zero, false
	}
	return domain.Get(out, key)
}
