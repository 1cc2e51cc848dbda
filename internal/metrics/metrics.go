// Package metrics holds the Prometheus collectors of the bot.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledgerbot"

// Metrics groups the collectors. Each instance owns its registry so tests can
// create as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Events             *prometheus.CounterVec
	Commits            *prometheus.CounterVec
	ExtractionFailures *prometheus.CounterVec
	ExtractionLatency  *prometheus.HistogramVec
	ExternalErrors     *prometheus.CounterVec
	WebhookResponses   *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialogue",
			Name:      "events_total",
			Help:      "Inbound chat events by type",
		}, []string{"type"}), // type: message, action
		Commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "commits_total",
			Help:      "Records appended to the spreadsheet by kind",
		}, []string{"kind"}),
		ExtractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extractor",
			Name:      "failures_total",
			Help:      "Free-text extractions that produced no draft",
		}, []string{"reason"}),
		ExtractionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extractor",
			Name:      "latency_seconds",
			Help:      "Wall clock of one extraction",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 8, 10, 15},
		}, []string{"schema", "status"}),
		ExternalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "external_errors_total",
			Help:      "Failed calls to the record sink or export archive",
		}, []string{"operation"}),
		WebhookResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "responses_total",
			Help:      "Webhook acknowledgements by status code",
		}, []string{"code"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Events,
		m.Commits,
		m.ExtractionFailures,
		m.ExtractionLatency,
		m.ExternalErrors,
		m.WebhookResponses,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
