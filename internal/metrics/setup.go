package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	// Pipeline metrics
	slotsTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	governorWait  prometheus.Histogram
	batchesTotal  *prometheus.CounterVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers default system collectors,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
func NewMetrics(cfg Config) *Metrics {
	// Isolated registry per service avoids collisions when several services
	// run in the same process.
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.slotsTotal = createCounterVec("meme_slots_total", "Meme slots processed, by outcome", []string{"outcome"})
	m.stageDuration = createHistogramVec("pipeline_stage_duration_seconds", "Duration of pipeline stages in seconds", []string{"stage"}, prometheus.DefBuckets)
	m.governorWait = createHistogram("rate_governor_wait_seconds", "Seconds slept before provider calls due to quota exhaustion", prometheus.ExponentialBuckets(0.05, 2, 12))
	m.batchesTotal = createCounterVec("meme_batches_total", "Batch requests processed, by outcome", []string{"outcome"})

	wrappedRegistry.MustRegister(
		m.slotsTotal,
		m.stageDuration,
		m.governorWait,
		m.batchesTotal,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}
	return m
}
