package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-ballot/infrastructure/source"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Stages reported in ScoringError.Stage by the batch driver.
const (
	StageFetch = "fetch"
	StageScore = "score"
	StageSink  = "sink"
)

// BatchReport summarizes a run. Failures are listed in input order.
type BatchReport struct {
	Total    int
	Scored   int
	Failures []*ports.ScoringError
	// Skipped counts candidates never attempted because the context was
	// cancelled.
	Skipped  int
	Duration time.Duration
}

// Failed returns the number of failed candidates.
func (r BatchReport) Failed() int { return len(r.Failures) }

// BatchScorer drives the engine over many candidates. Candidates are
// scheduled in fixed-size batches; within a batch up to Concurrency
// candidates are fetched, scored and written at once, and the next batch
// starts only after the current one has finished. A failing candidate is
// recorded in the report and never aborts the run.
type BatchScorer struct {
	engine      *Engine
	source      ports.CandidateSource
	sink        ports.ResultSink
	limiter     *rate.Limiter
	batchSize   int
	concurrency int
	preset      string
	custom      *domain.Weights
	logger      *slog.Logger
	metrics     ports.MetricsCollector
	tracer      trace.Tracer
}

// BatchOption configures a BatchScorer.
type BatchOption func(*BatchScorer)

// WithBatchSize sets the number of candidates per batch.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchScorer) { b.batchSize = n }
}

// WithConcurrency sets the number of candidates processed at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchScorer) { b.concurrency = n }
}

// WithFetchRate paces source fetches to perSecond with the given burst.
// A non-positive rate disables pacing.
func WithFetchRate(perSecond float64, burst int) BatchOption {
	return func(b *BatchScorer) {
		if perSecond <= 0 {
			b.limiter = nil
			return
		}
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithPreset selects the blend reported as the headline score.
func WithPreset(name string) BatchOption {
	return func(b *BatchScorer) { b.preset = name }
}

// WithBatchCustomWeights scores every candidate with an additional custom
// blend.
func WithBatchCustomWeights(w domain.Weights) BatchOption {
	return func(b *BatchScorer) { b.custom = &w }
}

// WithBatchLogger sets the logger. The default discards everything.
func WithBatchLogger(l *slog.Logger) BatchOption {
	return func(b *BatchScorer) { b.logger = l }
}

// WithBatchMetrics sets the metrics collector.
func WithBatchMetrics(m ports.MetricsCollector) BatchOption {
	return func(b *BatchScorer) { b.metrics = m }
}

// NewBatchScorer creates a driver that reads from src, scores with engine
// and writes to sink.
func NewBatchScorer(
	engine *Engine,
	src ports.CandidateSource,
	sink ports.ResultSink,
	opts ...BatchOption,
) (*BatchScorer, error) {
	if engine == nil || src == nil || sink == nil {
		return nil, fmt.Errorf("%w: engine, source and sink are required", domain.ErrInvalidConfiguration)
	}
	b := &BatchScorer{
		engine:      engine,
		source:      src,
		sink:        sink,
		batchSize:   DefaultConfig().BatchSize,
		concurrency: DefaultConfig().Concurrency,
		preset:      domain.PresetBalanced,
		tracer:      otel.Tracer("batch-scorer"),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size must be positive", domain.ErrInvalidConfiguration)
	}
	if b.concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be positive", domain.ErrInvalidConfiguration)
	}
	if _, ok := engine.Rubric().Composer.Presets[b.preset]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPreset, b.preset)
	}
	if b.logger == nil {
		b.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return b, nil
}

// NewBatchScorerFromConfig applies the batch settings of cfg before opts.
func NewBatchScorerFromConfig(
	cfg Config,
	engine *Engine,
	src ports.CandidateSource,
	sink ports.ResultSink,
	opts ...BatchOption,
) (*BatchScorer, error) {
	base := []BatchOption{
		WithBatchSize(cfg.BatchSize),
		WithConcurrency(cfg.Concurrency),
		WithFetchRate(cfg.FetchRate, cfg.FetchBurst),
		WithPreset(cfg.Preset),
	}
	return NewBatchScorer(engine, resilientSource(cfg, src), sink, append(base, opts...)...)
}

// Source middleware settings not exposed through Config.
const (
	retryBaseDelay  = 200 * time.Millisecond
	retryMaxDelay   = 5 * time.Second
	breakerCooldown = 30 * time.Second
)

// resilientSource wraps src with the retry, breaker and timeout
// middleware enabled by cfg. Retries are outermost so each attempt gets
// its own timeout and is seen by the breaker.
func resilientSource(cfg Config, src ports.CandidateSource) ports.CandidateSource {
	if src == nil {
		return nil
	}
	var mws []source.Middleware
	if cfg.FetchRetries > 0 {
		mws = append(mws, source.RetryMiddleware(cfg.FetchRetries, retryBaseDelay, retryMaxDelay))
	}
	if cfg.BreakerFailures > 0 {
		mws = append(mws, source.CircuitBreakerMiddleware(source.NewCircuitBreaker(cfg.BreakerFailures, breakerCooldown)))
	}
	if cfg.FetchTimeout > 0 {
		mws = append(mws, source.TimeoutMiddleware(cfg.FetchTimeout))
	}
	return source.Chain(src, mws...)
}

// RunAll scores every candidate the source lists.
func (b *BatchScorer) RunAll(ctx context.Context) (BatchReport, error) {
	ids, err := b.source.IDs(ctx)
	if err != nil {
		return BatchReport{}, fmt.Errorf("list candidates: %w", err)
	}
	return b.Run(ctx, ids)
}

// Run scores ids. The only error Run returns is the context's; every
// per-candidate failure is reported in BatchReport.Failures.
func (b *BatchScorer) Run(ctx context.Context, ids []string) (BatchReport, error) {
	start := time.Now()
	ctx, span := b.tracer.Start(ctx, "BatchScorer.Run",
		trace.WithAttributes(
			attribute.Int("batch.candidates", len(ids)),
			attribute.Int("batch.size", b.batchSize),
			attribute.Int("batch.concurrency", b.concurrency),
		),
	)
	defer span.End()

	report := BatchReport{Total: len(ids)}
	for first := 0; first < len(ids); first += b.batchSize {
		if err := ctx.Err(); err != nil {
			report.Skipped += len(ids) - first
			report.Duration = time.Since(start)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}

		batch := ids[first:min(first+b.batchSize, len(ids))]
		b.runBatch(ctx, first/b.batchSize, batch, &report)
	}

	report.Duration = time.Since(start)
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	span.SetAttributes(
		attribute.Int("batch.scored", report.Scored),
		attribute.Int("batch.failed", report.Failed()),
	)
	span.SetStatus(codes.Ok, "")
	b.logger.Info("scoring run complete",
		"candidates", report.Total,
		"scored", report.Scored,
		"failed", report.Failed(),
		"duration", report.Duration,
	)
	return report, nil
}

type outcome int

const (
	outcomeScored outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (b *BatchScorer) runBatch(ctx context.Context, index int, ids []string, report *BatchReport) {
	outcomes := make([]outcome, len(ids))
	failures := make([]*ports.ScoringError, len(ids))

	b.gauge(ports.MetricBatchInFlight, float64(len(ids)))
	defer b.gauge(ports.MetricBatchInFlight, 0)

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if ctx.Err() != nil {
				outcomes[i] = outcomeSkipped
				return nil
			}
			if err := b.scoreOne(ctx, id); err != nil {
				if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
					outcomes[i] = outcomeSkipped
					return nil
				}
				outcomes[i], failures[i] = outcomeFailed, err
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, o := range outcomes {
		switch o {
		case outcomeScored:
			report.Scored++
		case outcomeFailed:
			failed++
			report.Failures = append(report.Failures, failures[i])
		case outcomeSkipped:
			report.Skipped++
		}
	}

	b.logger.Info("batch complete",
		"batch", index,
		"size", len(ids),
		"failed", failed,
	)
}

// scoreOne fetches, scores and writes a single candidate.
func (b *BatchScorer) scoreOne(ctx context.Context, id string) *ports.ScoringError {
	fail := func(stage string, err error) *ports.ScoringError {
		serr := ports.NewScoringError(id, stage, err)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return serr
		}
		var srcErr *ports.SourceError
		retryable := errors.As(err, &srcErr) && srcErr.IsRetryable()
		b.logger.Warn("candidate skipped",
			"candidate_id", id,
			"stage", stage,
			"retryable", retryable,
			"error", err,
		)
		b.counter(ports.MetricCandidatesScored, map[string]string{"status": "failed"})
		b.counter(ports.MetricCandidateFailures, map[string]string{"stage": stage})
		return serr
	}

	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return fail(StageFetch, err)
		}
	}
	record, err := b.source.Fetch(ctx, id)
	if err != nil {
		return fail(StageFetch, err)
	}

	var opts []ScoreOption
	if b.custom != nil {
		opts = append(opts, WithCustomWeights(*b.custom))
	}
	result, err := b.engine.Score(ctx, record, opts...)
	if err != nil {
		return fail(StageScore, err)
	}

	if err := b.sink.Write(ctx, result); err != nil {
		return fail(StageSink, err)
	}

	b.counter(ports.MetricCandidatesScored, map[string]string{"status": "ok"})
	if blend, ok := result.Blends[b.preset]; ok {
		if b.metrics != nil {
			b.metrics.RecordHistogram(ports.MetricDimensionScore, blend.Score,
				map[string]string{"dimension": "blend_" + b.preset})
		}
		b.logger.Debug("candidate scored",
			"candidate_id", id,
			"cargo", result.Cargo,
			"preset", b.preset,
			"score", blend.Score,
		)
	}
	return nil
}

func (b *BatchScorer) counter(name string, labels map[string]string) {
	if b.metrics != nil {
		b.metrics.RecordCounter(name, 1, labels)
	}
}

func (b *BatchScorer) gauge(name string, value float64) {
	if b.metrics != nil {
		b.metrics.RecordGauge(name, value, nil)
	}
}
