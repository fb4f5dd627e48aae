// Package metrics holds the Prometheus collectors of the service. All
// collectors live on one registry owned by Metrics, so tests can build an
// isolated set.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parcelbot"

// Outcome labels shared by the decision counters.
const (
	OutcomeAccepted = "accepted"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// Metrics bundles the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	// Decisions counts customer decisions by operation and outcome, where
	// the outcome is "accepted" or a rejection reason code.
	Decisions *prometheus.CounterVec

	// GatewayRetries counts retried payment gateway calls.
	GatewayRetries prometheus.Counter

	// PaymentEvents counts consumed gateway events by status and result.
	PaymentEvents *prometheus.CounterVec

	// ExpiredPayments counts payments given up on by the expiry job.
	ExpiredPayments prometheus.Counter

	// HTTPRequestDuration observes API latency by route, method and status.
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of reschedule and upgrade decisions by operation and outcome",
		}, []string{"operation", "outcome"}),
		GatewayRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_retries_total",
			Help:      "Total number of retry attempts performed against the payment gateway",
		}),
		PaymentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_events_total",
			Help:      "Total number of payment gateway events consumed by status and result",
		}, []string{"status", "result"}),
		ExpiredPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_payments_total",
			Help:      "Total number of pending payments marked as expired",
		}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Decisions,
		m.GatewayRetries,
		m.PaymentEvents,
		m.ExpiredPayments,
		m.HTTPRequestDuration,
	)

	return m
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveDecision records one decision outcome.
func (m *Metrics) ObserveDecision(operation, outcome string) {
	m.Decisions.WithLabelValues(operation, outcome).Inc()
}

// ObservePaymentEvent records one consumed gateway event.
func (m *Metrics) ObservePaymentEvent(status, result string) {
	m.PaymentEvents.WithLabelValues(status, result).Inc()
}

// ObserveHTTPRequest records the latency of one request.
func (m *Metrics) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
