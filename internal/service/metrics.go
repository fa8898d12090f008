package service

import "github.com/prometheus/client_golang/prometheus"

// Fetch outcomes recorded by FetchMetrics
const (
	OutcomeSuccess   = "success"
	OutcomeEmpty     = "empty"
	OutcomeNetwork   = "network_error"
	OutcomeDecode    = "decode_error"
	OutcomeDiscarded = "discarded"
)

// FetchMetrics counts article fetches. A nil *FetchMetrics records nothing.
type FetchMetrics struct {
	fetches *prometheus.CounterVec
	dropped prometheus.Counter
}

// NewFetchMetrics creates the counters and registers them with reg
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	m := &FetchMetrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "finboard",
			Subsystem: "news",
			Name:      "fetch_total",
			Help:      "Article page requests by outcome.",
		}, []string{"outcome"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "finboard",
			Subsystem: "news",
			Name:      "fetch_dropped_total",
			Help:      "Article page requests dropped because another request was in flight.",
		}),
	}
	reg.MustRegister(m.fetches, m.dropped)
	return m
}

func (m *FetchMetrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
}

func (m *FetchMetrics) drop() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
