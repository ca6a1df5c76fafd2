// Package metrics exposes Prometheus collectors for the HTTP layer, the
// ledger services and the background workers.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cyberia"

// Metrics owns its registry so tests can build independent instances.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	operaciones   *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	sesionAbierta prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		operaciones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by name and result (ok or error kind).",
		}, []string{"operacion", "resultado"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs by queue and result.",
		}, []string{"cola", "resultado"}),
		sesionAbierta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "caja_sesion_abierta",
			Help:      "1 while a cash session is open.",
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.operaciones, m.jobs, m.sesionAbierta,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Operacion(operacion, resultado string) {
	if m == nil {
		return
	}
	m.operaciones.WithLabelValues(operacion, resultado).Inc()
}

func (m *Metrics) Job(cola, resultado string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(cola, resultado).Inc()
}

func (m *Metrics) SesionAbierta(abierta bool) {
	if m == nil {
		return
	}
	if abierta {
		m.sesionAbierta.Set(1)
		return
	}
	m.sesionAbierta.Set(0)
}
