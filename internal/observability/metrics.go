// Package observability exposes the bot's Prometheus metrics.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpdatesTotal           *prometheus.CounterVec
	EntitlementDeniedTotal *prometheus.CounterVec
	UsageRecordedTotal     prometheus.Counter
	LLMRequestsTotal       *prometheus.CounterVec
	LLMRequestDuration     *prometheus.HistogramVec
	BroadcastMessagesTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UpdatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legalbot_updates_total",
				Help: "Inbound chat updates by kind",
			},
			[]string{"kind"},
		),
		EntitlementDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legalbot_entitlement_denied_total",
				Help: "Gated actions refused by plan or usage",
			},
			[]string{"reason"},
		),
		UsageRecordedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "legalbot_usage_recorded_total",
				Help: "Consumption events written to the usage counter",
			},
		),
		LLMRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legalbot_llm_requests_total",
				Help: "Generative model calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		LLMRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "legalbot_llm_request_duration_seconds",
				Help:    "Generative model call latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"operation"},
		),
		BroadcastMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legalbot_broadcast_messages_total",
				Help: "Admin broadcast deliveries by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.UpdatesTotal,
		m.EntitlementDeniedTotal,
		m.UsageRecordedTotal,
		m.LLMRequestsTotal,
		m.LLMRequestDuration,
		m.BroadcastMessagesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the private registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.UpdatesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) Denied(reason string) {
	if m == nil {
		return
	}
	m.EntitlementDeniedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) UsageRecorded() {
	if m == nil {
		return
	}
	m.UsageRecordedTotal.Inc()
}

// ObserveLLM records one model call. err decides the outcome label.
func (m *Metrics) ObserveLLM(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LLMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.LLMRequestDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Broadcast(outcome string) {
	if m == nil {
		return
	}
	m.BroadcastMessagesTotal.WithLabelValues(outcome).Inc()
}
