// Package metrics holds the Prometheus collectors of the scheduler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	RPCRequests      *prometheus.CounterVec
	ConflictsFound   prometheus.Counter
	Exports          prometheus.Counter
	AuditConflicting prometheus.Gauge
	AuditLastRun     prometheus.Gauge
}

// New registers every collector on a fresh registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "grpc_requests_total",
			Help:      "gRPC calls by method and status code.",
		}, []string{"method", "code"}),
		ConflictsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "conflicts_found_total",
			Help:      "Conflicting meetings returned by conflict checks.",
		}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Name:      "calendar_exports_total",
			Help:      "Calendar documents generated.",
		}),
		AuditConflicting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "audit_conflicting_meetings",
			Help:      "Upcoming meetings with at least one conflict at the last audit.",
		}),
		AuditLastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Name:      "audit_last_run_timestamp_seconds",
			Help:      "Unix time of the last completed audit.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration, m.RPCRequests,
		m.ConflictsFound, m.Exports, m.AuditConflicting, m.AuditLastRun,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
