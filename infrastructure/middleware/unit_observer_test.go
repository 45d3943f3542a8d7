package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
	"github.com/ahrav/go-ballot/internal/testutils"
)

// mockUnit implements ports.Unit for testing middleware functionality.
type mockUnit struct {
	name        string
	executeFunc func(ctx context.Context, state domain.State) (domain.State, error)
	validateErr error
}

func (m *mockUnit) Name() string { return m.name }

func (m *mockUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	if m.executeFunc != nil {
		return m.executeFunc(ctx, state)
	}
	return state, nil
}

func (m *mockUnit) Validate() error { return m.validateErr }

// mockObserver records hook calls.
type mockObserver struct {
	mu     sync.Mutex
	before []string
	after  []afterCall
}

type afterCall struct {
	unit    string
	in, out domain.State
	elapsed time.Duration
	err     error
}

type ctxMarker struct{}

func (m *mockObserver) Before(ctx context.Context, unit string) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.before = append(m.before, unit)
	return context.WithValue(ctx, ctxMarker{}, unit)
}

func (m *mockObserver) After(ctx context.Context, unit string, in, out domain.State, elapsed time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.after = append(m.after, afterCall{unit: unit, in: in, out: out, elapsed: elapsed, err: err})
}

func TestNewObservedUnit(t *testing.T) {
	assert.Panics(t, func() { NewObservedUnit(nil, &mockObserver{}) })
	assert.Panics(t, func() { NewObservedUnit(&mockUnit{name: "u"}, nil) })

	o := NewObservedUnit(&mockUnit{name: "integrity"}, &mockObserver{})
	assert.Equal(t, "integrity", o.Name())
	assert.Equal(t, "integrity", o.Unwrap().Name())
}

func TestObservedUnit_Execute(t *testing.T) {
	t.Run("hooks wrap a successful execution", func(t *testing.T) {
		observer := &mockObserver{}
		var sawMarker bool
		unit := &mockUnit{
			name: "competence",
			executeFunc: func(ctx context.Context, state domain.State) (domain.State, error) {
				sawMarker = ctx.Value(ctxMarker{}) == "competence"
				time.Sleep(time.Millisecond)
				return domain.With(state, domain.KeyReferenceYear, 2026), nil
			},
		}

		in := domain.NewState()
		out, err := NewObservedUnit(unit, observer).Execute(context.Background(), in)
		require.NoError(t, err)

		assert.True(t, sawMarker, "unit receives the observer context")
		assert.Equal(t, []string{"competence"}, observer.before)
		require.Len(t, observer.after, 1)
		call := observer.after[0]
		assert.Equal(t, "competence", call.unit)
		assert.Equal(t, in, call.in)
		assert.Equal(t, out, call.out)
		assert.Positive(t, call.elapsed)
		assert.NoError(t, call.err)
	})

	t.Run("errors pass through unchanged", func(t *testing.T) {
		observer := &mockObserver{}
		boom := errors.New("boom")
		unit := &mockUnit{
			name: "compose",
			executeFunc: func(_ context.Context, state domain.State) (domain.State, error) {
				return state, boom
			},
		}

		_, err := NewObservedUnit(unit, observer).Execute(context.Background(), domain.NewState())
		assert.ErrorIs(t, err, boom)
		require.Len(t, observer.after, 1)
		assert.ErrorIs(t, observer.after[0].err, boom)
	})
}

func TestObservedUnit_Validate(t *testing.T) {
	invalid := errors.New("bad rubric")
	o := NewObservedUnit(&mockUnit{name: "u", validateErr: invalid}, &mockObserver{})
	assert.ErrorIs(t, o.Validate(), invalid)

	o = NewObservedUnit(&mockUnit{name: "u"}, &mockObserver{})
	assert.NoError(t, o.Validate())
}

func TestOTelStageObserver(t *testing.T) {
	integrity := domain.IntegrityBreakdown{
		Base:     100,
		Criminal: domain.NewSubScore(40, 70),
		Score:    60,
	}
	competence := domain.CompetenceBreakdown{Score: 92}

	t.Run("records scores the stage produced", func(t *testing.T) {
		metrics := testutils.NewRecordingCollector()
		observer := NewOTelStageObserver(metrics)

		in := domain.With(domain.NewState(), domain.KeyCompetence, competence)
		out := domain.With(in, domain.KeyIntegrity, integrity)

		unit := &mockUnit{
			name: "integrity",
			executeFunc: func(context.Context, domain.State) (domain.State, error) {
				return out, nil
			},
		}
		_, err := NewObservedUnit(unit, observer).Execute(context.Background(), in)
		require.NoError(t, err)

		latency := metrics.Find("latency", "stage")
		require.Len(t, latency, 1)
		assert.Equal(t, "integrity", latency[0].Labels["unit"])

		scores := metrics.Find("histogram", ports.MetricDimensionScore)
		require.Len(t, scores, 1, "competence was already in the input")
		assert.Equal(t, "integrity", scores[0].Labels["dimension"])
		assert.Equal(t, 60.0, scores[0].Value)

		penalties := metrics.Find("histogram", ports.MetricIntegrityPenalty)
		require.Len(t, penalties, 1, "zero penalties are skipped")
		assert.Equal(t, domain.CategoryCriminal, penalties[0].Labels["category"])
		assert.Equal(t, 40.0, penalties[0].Value)
	})

	t.Run("counts failures", func(t *testing.T) {
		metrics := testutils.NewRecordingCollector()
		unit := &mockUnit{
			name: "normalize",
			executeFunc: func(_ context.Context, state domain.State) (domain.State, error) {
				return state, domain.ErrKeyNotFound
			},
		}
		_, err := NewObservedUnit(unit, NewOTelStageObserver(metrics)).Execute(context.Background(), domain.NewState())
		require.Error(t, err)

		assert.Equal(t, 1.0, metrics.Sum(ports.MetricStageFailures, map[string]string{"unit": "normalize"}))
		assert.Empty(t, metrics.Find("histogram", ports.MetricDimensionScore))
	})

	t.Run("works without a collector", func(t *testing.T) {
		unit := &mockUnit{name: "transparency"}
		assert.NotPanics(t, func() {
			_, _ = NewObservedUnit(unit, NewOTelStageObserver(nil)).Execute(context.Background(), domain.NewState())
		})
	})
}

func TestExecutionAttributes(t *testing.T) {
	assert.Empty(t, executionAttributes(domain.NewState()))

	state := domain.NewState().WithExecutionContext(domain.ExecutionContext{
		PipelineID:    "candidate-scoring",
		ExecutionID:   "exec-1",
		RubricVersion: "2026.1",
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String("execution.id", "exec-1"),
		attribute.String("rubric.version", "2026.1"),
		attribute.String("pipeline.id", "candidate-scoring"),
	}, executionAttributes(state))
}
