package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	gatewayCount    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	ticketsCreated  *prometheus.CounterVec
	hostTransitions *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of dashboard HTTP requests",
		}, []string{"route", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of dashboard HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Count of dashboard HTTP errors by code",
		}, []string{"route", "method", "code"}),
		gatewayCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Count of PSA backend calls by outcome",
		}, []string{"operation", "outcome"}),
		gatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Latency of PSA backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "store",
			Name:      "tickets_created_total",
			Help:      "Tickets created through the dashboard by priority",
		}, []string{"priority"}),
		hostTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ticket_dashboard",
			Subsystem: "host",
			Name:      "updates_total",
			Help:      "Host bridge updates by state",
		}, []string{"state"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(route, method, code).Inc()
}

// RecordGatewayCall records one backend call. outcome is "ok" or an
// error code.
func (m *Metrics) RecordGatewayCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCount.WithLabelValues(operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTicketCreated counts a created ticket.
func (m *Metrics) RecordTicketCreated(priority string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(priority).Inc()
}

// RecordHostUpdate counts a host bridge update.
func (m *Metrics) RecordHostUpdate(state string) {
	if m == nil {
		return
	}
	m.hostTransitions.WithLabelValues(state).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
