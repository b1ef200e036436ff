// Package metrics exposes Prometheus counters for HTTP traffic and the
// verification code pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyunix/go-linksports/internal/domain"
)

const namespace = "linksports"

// Outcome labels for code sends and verifications.
const (
	OutcomeSent            = "sent"
	OutcomeDailyLimit      = "daily_limit"
	OutcomeCooldown        = "cooldown"
	OutcomeVerified        = "verified"
	OutcomeInvalid         = "invalid"
	OutcomeTooManyAttempts = "too_many_attempts"
	OutcomeDelivered       = "delivered"
	OutcomeDeliveryFailed  = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	CodeSendsTotal    *prometheus.CounterVec
	CodeVerifiesTotal *prometheus.CounterVec
	DeliveriesTotal   *prometheus.CounterVec
	DeliveryAttempts  *prometheus.HistogramVec
}

// New registers every collector on a private registry, plus the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CodeSendsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_code_sends_total",
			Help:      "Verification code requests by channel and outcome.",
		}, []string{"channel", "outcome"}),
		CodeVerifiesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verification_code_checks_total",
			Help:      "Verification code checks by channel and outcome.",
		}, []string{"channel", "outcome"}),
		DeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_deliveries_total",
			Help:      "Queued code deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		DeliveryAttempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "code_delivery_attempts",
			Help:      "Gateway attempts spent per delivery.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}, []string{"channel"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CodeRequested classifies the result of a code request.
func (m *Metrics) CodeRequested(channel domain.ContactType, err error) {
	outcome := OutcomeSent
	switch {
	case err == nil:
	case domain.IsRateLimited(err, domain.DailyLimitExceeded):
		outcome = OutcomeDailyLimit
	case domain.IsRateLimited(err, domain.CooldownActive):
		outcome = OutcomeCooldown
	default:
		return
	}
	m.CodeSendsTotal.WithLabelValues(string(channel), outcome).Inc()
}

func (m *Metrics) CodeChecked(channel domain.ContactType, outcome string) {
	m.CodeVerifiesTotal.WithLabelValues(string(channel), outcome).Inc()
}

func (m *Metrics) DeliveryFinished(channel domain.ContactType, delivered bool, attempts int) {
	outcome := OutcomeDelivered
	if !delivered {
		outcome = OutcomeDeliveryFailed
	}
	m.DeliveriesTotal.WithLabelValues(string(channel), outcome).Inc()
	m.DeliveryAttempts.WithLabelValues(string(channel)).Observe(float64(attempts))
}
