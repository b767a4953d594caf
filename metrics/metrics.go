// Package metrics holds the Prometheus collectors for outbound fetches,
// translation providers and served HTTP responses.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	translations  *prometheus.CounterVec
	responses     *prometheus.CounterVec
}

// New creates a registry with the process/Go collectors and the service
// counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		fetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finnews_fetch_attempts_total",
			Help: "Outbound fetch attempts by outcome (ok, timeout, upstream, input).",
		}, []string{"outcome"}),
		translations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finnews_translation_calls_total",
			Help: "Translation provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		responses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finnews_http_responses_total",
			Help: "HTTP responses by route and status code.",
		}, []string{"route", "code"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch counts one fetch attempt.
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(outcome).Inc()
}

// ObserveTranslation counts one provider call.
func (m *Metrics) ObserveTranslation(provider, outcome string) {
	if m == nil {
		return
	}
	m.translations.WithLabelValues(provider, outcome).Inc()
}

// ObserveResponse counts one served response.
func (m *Metrics) ObserveResponse(route string, code int) {
	if m == nil {
		return
	}
	m.responses.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
