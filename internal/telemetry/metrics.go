package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Search attempt outcomes. Network failures and genuinely empty result
// pages are reported separately even though both trigger a retry.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	searchAttempts *prometheus.CounterVec
	searchLatency  *prometheus.HistogramVec
	searchRequests *prometheus.CounterVec
	streamEvents   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qwksearch",
			Name:      "metasearch_attempts_total",
			Help:      "Backend attempts by parse path and outcome.",
		}, []string{"path", "outcome"}),
		searchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qwksearch",
			Name:      "metasearch_attempt_seconds",
			Help:      "Latency of single backend attempts.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qwksearch",
			Name:      "search_requests_total",
			Help:      "Search service requests by the path that produced results.",
		}, []string{"resolved_by"}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qwksearch",
			Name:      "stream_events_total",
			Help:      "Answer stream events by type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.searchAttempts, m.searchLatency, m.searchRequests, m.streamEvents)
	return m
}

// SearchAttempt records one backend call
func (m *Metrics) SearchAttempt(path, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.searchAttempts.WithLabelValues(path, outcome).Inc()
	m.searchLatency.WithLabelValues(path).Observe(seconds)
}

// SearchResolved records which fallback stage answered a search request
func (m *Metrics) SearchResolved(stage string) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(stage).Inc()
}

// StreamEvent records one event forwarded on an answer stream
func (m *Metrics) StreamEvent(eventType string) {
	if m == nil {
		return
	}
	m.streamEvents.WithLabelValues(eventType).Inc()
}
