package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementSlots increments the slot counter with a given outcome label.
// Example: metrics.IncrementSlots("rendered")
func (m *Metrics) IncrementSlots(outcome string) {
	m.slotsTotal.WithLabelValues(outcome).Inc()
}

// IncrementBatches increments the batch counter with a given outcome label.
func (m *Metrics) IncrementBatches(outcome string) {
	m.batchesTotal.WithLabelValues(outcome).Inc()
}

// RecordStageDuration records the duration (in seconds) of a pipeline stage.
// Example: defer metrics.RecordStageDuration(time.Now(), "render_upload")
func (m *Metrics) RecordStageDuration(start time.Time, stage string) {
	duration := time.Since(start).Seconds()
	m.stageDuration.WithLabelValues(stage).Observe(duration)
}

// ObserveGovernorWait records a pre-call sleep imposed by the rate governor.
func (m *Metrics) ObserveGovernorWait(d time.Duration) {
	m.governorWait.Observe(d.Seconds())
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createHistogram(name, help string, buckets []float64) prometheus.Histogram {
	return prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
	)
}
