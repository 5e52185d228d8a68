// Package monitoring exposes Prometheus metrics and a health summary
// for the control server and the simulated exchanges it plays out.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fredcamaral/miniserve/internal/domain/ports"
)

// Monitor owns a private registry so several instances can coexist in tests
type Monitor struct {
	registry  *prometheus.Registry
	startTime time.Time

	simulatedRequests  *prometheus.CounterVec
	simulatedResponses *prometheus.CounterVec
	simulatedBytes     prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	wsConnectionsActive *prometheus.GaugeVec
	rateLimitHitsTotal  prometheus.Counter
}

// NewMonitor creates a monitor with Go runtime and process collectors registered
func NewMonitor() *Monitor {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Monitor{
		registry:  reg,
		startTime: time.Now(),

		simulatedRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miniserve_simulated_requests_total",
				Help: "Total number of simulated requests",
			},
			[]string{"path"},
		),
		simulatedResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miniserve_simulated_responses_total",
				Help: "Total number of simulated responses by status",
			},
			[]string{"status"},
		),
		simulatedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "miniserve_simulated_response_bytes_total",
				Help: "Total bytes of simulated response bodies",
			},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "miniserve_http_requests_total",
				Help: "Total number of control server HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "miniserve_http_request_duration_seconds",
				Help:    "Control server HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		wsConnectionsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "miniserve_websocket_connections_active",
				Help: "Number of open WebSocket connections",
			},
			[]string{"endpoint"},
		),
		rateLimitHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "miniserve_rate_limit_hits_total",
				Help: "Total rate limit rejections (429s)",
			},
		),
	}
}

// Handler returns the metrics endpoint for this monitor's registry
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// RequestSimulated counts a simulated request
func (m *Monitor) RequestSimulated(path string) {
	m.simulatedRequests.WithLabelValues(path).Inc()
}

// ResponseSimulated counts a simulated response and its body size
func (m *Monitor) ResponseSimulated(path string, status, bytes int) {
	m.simulatedResponses.WithLabelValues(strconv.Itoa(status)).Inc()
	m.simulatedBytes.Add(float64(bytes))
}

// RecordHTTPRequest records a control server request
func (m *Monitor) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// WebSocketOpened increments the open connection gauge for endpoint
func (m *Monitor) WebSocketOpened(endpoint string) {
	m.wsConnectionsActive.WithLabelValues(endpoint).Inc()
}

// WebSocketClosed decrements the open connection gauge for endpoint
func (m *Monitor) WebSocketClosed(endpoint string) {
	m.wsConnectionsActive.WithLabelValues(endpoint).Dec()
}

// RecordRateLimitHit counts a rejected request
func (m *Monitor) RecordRateLimitHit() {
	m.rateLimitHitsTotal.Inc()
}

var _ ports.SimulationObserver = (*Monitor)(nil)
