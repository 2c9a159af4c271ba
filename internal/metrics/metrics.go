// Package metrics exposes Prometheus instrumentation for both transports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one server instance.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	grpcRequests *prometheus.CounterVec
	grpcDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, so tests can build several
// without duplicate-registration panics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		grpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_grpc_requests_total",
			Help: "Total gRPC requests by full method and status code.",
		}, []string{"method", "code"}),
		grpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inkwell_grpc_request_duration_seconds",
			Help:    "gRPC request latency by full method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveGRPC records one finished gRPC request.
func (m *Metrics) ObserveGRPC(fullMethod, code string, elapsed time.Duration) {
	m.grpcRequests.WithLabelValues(fullMethod, code).Inc()
	m.grpcDuration.WithLabelValues(fullMethod).Observe(elapsed.Seconds())
}
