package testutils

import (
	"maps"
	"sync"
	"time"

	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.MetricsCollector = (*RecordingCollector)(nil)

// Observation is one recorded metric call.
type Observation struct {
	Kind   string
	Name   string
	Value  float64
	Labels map[string]string
}

// RecordingCollector records every metric call for assertions.
type RecordingCollector struct {
	mu           sync.Mutex
	observations []Observation
}

// NewRecordingCollector creates an empty collector.
func NewRecordingCollector() *RecordingCollector { return &RecordingCollector{} }

func (c *RecordingCollector) record(kind, name string, value float64, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observations = append(c.observations, Observation{
		Kind:   kind,
		Name:   name,
		Value:  value,
		Labels: maps.Clone(labels),
	})
}

// RecordLatency implements ports.MetricsCollector.
func (c *RecordingCollector) RecordLatency(operation string, d time.Duration, labels map[string]string) {
	c.record("latency", operation, d.Seconds(), labels)
}

// RecordCounter implements ports.MetricsCollector.
func (c *RecordingCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	c.record("counter", metric, value, labels)
}

// RecordGauge implements ports.MetricsCollector.
func (c *RecordingCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	c.record("gauge", metric, value, labels)
}

// RecordHistogram implements ports.MetricsCollector.
func (c *RecordingCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	c.record("histogram", metric, value, labels)
}

// Find returns the observations of the given kind and name.
func (c *RecordingCollector) Find(kind, name string) []Observation {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Observation
	for _, o := range c.observations {
		if o.Kind == kind && o.Name == name {
			out = append(out, o)
		}
	}
	return out
}

// Sum adds the values of the counter name whose labels include match.
func (c *RecordingCollector) Sum(name string, match map[string]string) float64 {
	total := 0.0
	for _, o := range c.Find("counter", name) {
		ok := true
		for k, v := range match {
			if o.Labels[k] != v {
				ok = false
				break
			}
		}
		if ok {
			total += o.Value
		}
	}
	return total
}
