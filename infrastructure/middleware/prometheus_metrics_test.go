package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/ports"
)

// TestNewPrometheusMetrics verifies that every collector is initialized and
// registered with the supplied registry.
func TestNewPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	pm := NewPrometheusMetrics(reg)

	assert.NotNil(t, pm.candidatesScored)
	assert.NotNil(t, pm.candidateFailures)
	assert.NotNil(t, pm.stageFailures)
	assert.NotNil(t, pm.operationCounter)
	assert.NotNil(t, pm.executionLatency)
	assert.NotNil(t, pm.dimensionScores)
	assert.NotNil(t, pm.integrityPenalty)
	assert.NotNil(t, pm.values)
	assert.NotNil(t, pm.systemGauges)

	var _ ports.MetricsCollector = pm

	pm.RecordCounter(ports.MetricCandidatesScored, 1, map[string]string{"status": "ok"})
	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ballot_candidates_scored_total")
}

// TestNewPrometheusMetrics_DuplicateRegistration checks that two collectors
// cannot share a registry.
func TestNewPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)
	assert.Panics(t, func() { NewPrometheusMetrics(reg) })

	assert.NotPanics(t, func() {
		NewPrometheusMetrics(nil)
		NewPrometheusMetrics(nil)
	}, "unregistered collectors never conflict")
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		labels map[string]string
		value  func(pm *PrometheusMetrics) float64
	}{
		{
			name:   "candidates scored by status",
			metric: ports.MetricCandidatesScored,
			labels: map[string]string{"status": "ok"},
			value: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.candidatesScored.WithLabelValues("ok"))
			},
		},
		{
			name:   "candidate failures by stage",
			metric: ports.MetricCandidateFailures,
			labels: map[string]string{"stage": "fetch"},
			value: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.candidateFailures.WithLabelValues("fetch"))
			},
		},
		{
			name:   "stage failures by unit",
			metric: ports.MetricStageFailures,
			labels: map[string]string{"unit": "integrity"},
			value: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.stageFailures.WithLabelValues("integrity"))
			},
		},
		{
			name:   "missing status label",
			metric: ports.MetricCandidatesScored,
			labels: nil,
			value: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.candidatesScored.WithLabelValues("unknown"))
			},
		},
		{
			name:   "unknown metric as generic counter",
			metric: "rubric_loads",
			labels: map[string]string{"unit": ""},
			value: func(pm *PrometheusMetrics) float64 {
				return testutil.ToFloat64(pm.operationCounter.WithLabelValues("rubric_loads", "unknown"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := NewPrometheusMetrics(nil)
			pm.RecordCounter(tt.metric, 2, tt.labels)
			pm.RecordCounter(tt.metric, 1, tt.labels)
			assert.Equal(t, 3.0, tt.value(pm))
		})
	}
}

func TestPrometheusMetrics_RecordHistogram(t *testing.T) {
	pm := NewPrometheusMetrics(nil)

	pm.RecordHistogram(ports.MetricDimensionScore, 92, map[string]string{"dimension": "competence"})
	pm.RecordHistogram(ports.MetricDimensionScore, 60, map[string]string{"dimension": "integrity"})
	pm.RecordHistogram(ports.MetricIntegrityPenalty, 40, map[string]string{"category": "criminal"})
	pm.RecordHistogram("custom", 0.5, map[string]string{"other": "value"})

	assert.Equal(t, 2, testutil.CollectAndCount(pm.dimensionScores))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.integrityPenalty))
	assert.Equal(t, 1, testutil.CollectAndCount(pm.values))
}

func TestPrometheusMetrics_RecordLatencyAndGauge(t *testing.T) {
	pm := NewPrometheusMetrics(nil)

	pm.RecordLatency("stage", 5*time.Millisecond, map[string]string{"unit": "normalize"})
	pm.RecordLatency("stage", time.Millisecond, nil)
	assert.Equal(t, 2, testutil.CollectAndCount(pm.executionLatency))

	pm.RecordGauge(ports.MetricBatchInFlight, 7, map[string]string{"unit": "batch"})
	pm.RecordGauge(ports.MetricBatchInFlight, 3, map[string]string{"unit": "batch"})
	assert.Equal(t, 3.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues(ports.MetricBatchInFlight, "batch")))
}

// TestPrometheusMetrics_LabelHandling verifies that the collector handles
// nil, empty and incomplete label maps.
func TestPrometheusMetrics_LabelHandling(t *testing.T) {
	pm := NewPrometheusMetrics(nil)

	for _, labels := range []map[string]string{
		nil,
		{},
		{"unit": ""},
		{"other": "value"},
	} {
		assert.NotPanics(t, func() {
			pm.RecordLatency("op", time.Millisecond, labels)
			pm.RecordCounter(ports.MetricCandidateFailures, 1, labels)
			pm.RecordGauge("gauge", 1, labels)
			pm.RecordHistogram(ports.MetricDimensionScore, 50, labels)
		})
	}
}
