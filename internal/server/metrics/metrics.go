// Package metrics exposes flow outcomes and RPC latencies to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/orchestrator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "accountkeeper"

type Metrics struct {
	registry *prometheus.Registry

	outcomes    *prometheus.CounterVec
	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	throttled   *prometheus.CounterVec
}

// New builds a registry with the service collectors plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "flow",
				Name:      "outcomes_total",
				Help:      "Account flow outcomes by kind.",
			},
			[]string{"flow", "kind"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "requests_total",
				Help:      "Total number of gRPC requests handled.",
			},
			[]string{"method", "code"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "request_duration_seconds",
				Help:      "Duration of gRPC requests.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method"},
		),
		throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "grpc",
				Name:      "throttled_total",
				Help:      "Requests refused by the credential rate limiter.",
			},
			[]string{"method"},
		),
	}

	m.registry.MustRegister(
		m.outcomes,
		m.rpcRequests,
		m.rpcDuration,
		m.throttled,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Outcome implements orchestrator.Recorder.
func (m *Metrics) Outcome(flow string, kind orchestrator.Kind) {
	m.outcomes.WithLabelValues(flow, string(kind)).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcRequests.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) Throttled(method string) {
	m.throttled.WithLabelValues(method).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ orchestrator.Recorder = (*Metrics)(nil)
