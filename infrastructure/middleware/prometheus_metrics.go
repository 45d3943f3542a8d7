// Package middleware provides cross-cutting concerns for the scoring engine:
// a Prometheus metrics collector and a unit decorator that traces and
// measures every pipeline stage.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-ballot/internal/ports"
)

const namespace = "ballot"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It exposes scoring throughput, stage latency, failures and the
// distribution of dimension scores and integrity penalties.
type PrometheusMetrics struct {
	candidatesScored  *prometheus.CounterVec
	candidateFailures *prometheus.CounterVec
	stageFailures     *prometheus.CounterVec
	operationCounter  *prometheus.CounterVec
	executionLatency  *prometheus.HistogramVec
	dimensionScores   *prometheus.HistogramVec
	integrityPenalty  *prometheus.HistogramVec
	values            *prometheus.HistogramVec
	systemGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which tests use to avoid duplicate
// registration panics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	scoreBuckets := prometheus.LinearBuckets(0, 10, 11)

	return &PrometheusMetrics{
		candidatesScored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      ports.MetricCandidatesScored,
				Help:      "Candidates processed by the engine, by outcome.",
			},
			[]string{"status"},
		),
		candidateFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      ports.MetricCandidateFailures,
				Help:      "Candidates that failed, by the stage that failed them.",
			},
			[]string{"stage"},
		),
		stageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      ports.MetricStageFailures,
				Help:      "Failed unit executions.",
			},
			[]string{"unit"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Other counted operations.",
			},
			[]string{"operation", "unit"},
		),
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Execution time of engine operations and pipeline stages.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation", "unit"},
		),
		dimensionScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      ports.MetricDimensionScore,
				Help:      "Distribution of dimension scores on the 0-100 scale.",
				Buckets:   scoreBuckets,
			},
			[]string{"dimension"},
		),
		integrityPenalty: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      ports.MetricIntegrityPenalty,
				Help:      "Distribution of integrity penalty points per category.",
				Buckets:   scoreBuckets,
			},
			[]string{"category"},
		),
		values: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "observed_values",
				Help:      "Other observed values.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"metric", "unit"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "system_state",
				Help:      "Current state values of the engine.",
			},
			[]string{"metric", "unit"},
		),
	}
}

// labelOr returns labels[key], or fallback when it is missing or empty.
func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	unit := labelOr(labels, "unit", "unknown")
	pm.executionLatency.WithLabelValues(operation, unit).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricCandidatesScored:
		pm.candidatesScored.WithLabelValues(labelOr(labels, "status", "unknown")).Add(value)
	case ports.MetricCandidateFailures:
		pm.candidateFailures.WithLabelValues(labelOr(labels, "stage", "unknown")).Add(value)
	case ports.MetricStageFailures:
		pm.stageFailures.WithLabelValues(labelOr(labels, "unit", "unknown")).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, labelOr(labels, "unit", "unknown")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric, labelOr(labels, "unit", "unknown")).Set(value)
}

// RecordHistogram implements the MetricsCollector interface. Dimension
// scores and integrity penalties have dedicated histograms; anything else
// lands in a generic one keyed by metric name.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricDimensionScore:
		pm.dimensionScores.WithLabelValues(labelOr(labels, "dimension", "unknown")).Observe(value)
	case ports.MetricIntegrityPenalty:
		pm.integrityPenalty.WithLabelValues(labelOr(labels, "category", "unknown")).Observe(value)
	default:
		pm.values.WithLabelValues(metric, labelOr(labels, "unit", "unknown")).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
