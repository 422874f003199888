package mapper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	requestOutcomeComplete = "complete"
	requestOutcomePartial  = "partial"
	requestOutcomeFallback = "fallback"
)

// Metrics instruments chained mappers. A nil *Metrics records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	refreshFailures *prometheus.CounterVec
}

// NewMetrics registers chain collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "action",
			Subsystem: "mapper",
			Name:      "requests_total",
			Help:      "Chained mapper requests by mapper name and resolution outcome.",
		}, []string{"mapper", "outcome"}),
		refreshFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "action",
			Subsystem: "mapper",
			Name:      "refresh_failures_total",
			Help:      "Best-effort primary store refreshes that failed.",
		}, []string{"mapper"}),
	}
}

func (m *Metrics) observeRequest(name, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) observeRefreshFailure(name string) {
	if m == nil {
		return
	}
	m.refreshFailures.WithLabelValues(name).Inc()
}
