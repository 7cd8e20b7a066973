// Package metrics registers the service's Prometheus collectors once per
// process.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	global *Metrics
	once   sync.Once
)

type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// SuggestionOutcomes counts results by kind (skills, resources),
	// strategy and outcome.
	SuggestionOutcomes *prometheus.CounterVec
	SuggestionDuration *prometheus.HistogramVec

	GraphRejections *prometheus.CounterVec
}

// Default returns the process-wide metrics, registering them on first use.
func Default() *Metrics {
	once.Do(func() {
		global = newMetrics(promauto.With(prometheus.DefaultRegisterer))
	})
	return global
}

// New registers a fresh set on reg. Tests use a private registry.
func New(reg prometheus.Registerer) *Metrics {
	return newMetrics(promauto.With(reg))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnmap_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnmap_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		SuggestionOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnmap_suggestions_total",
				Help: "Suggestion results by kind, strategy and outcome.",
			},
			[]string{"kind", "strategy", "outcome"},
		),
		SuggestionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learnmap_suggestion_duration_seconds",
				Help:    "Time spent producing a suggestion result.",
				Buckets: []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
			},
			[]string{"kind", "strategy"},
		),
		GraphRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learnmap_skill_graph_rejections_total",
				Help: "Dependency writes rejected because they would close a cycle.",
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ObserveSuggestion(kind, strategy, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SuggestionOutcomes.WithLabelValues(kind, strategy, outcome).Inc()
	m.SuggestionDuration.WithLabelValues(kind, strategy).Observe(d.Seconds())
}

func (m *Metrics) CycleRejected(operation string) {
	if m == nil {
		return
	}
	m.GraphRejections.WithLabelValues(operation).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
