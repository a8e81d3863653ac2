package metrics

import "github.com/prometheus/client_golang/prometheus"

// MatchingMetrics exposes counters/histograms for matching and lifecycle flows.
type MatchingMetrics struct {
	rankTotal       *prometheus.CounterVec
	rankEligible    prometheus.Histogram
	rankLatency     prometheus.Histogram
	transitionTotal *prometheus.CounterVec
}

func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	m := &MatchingMetrics{
		rankTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "rank_total",
			Help:      "Total provider ranking computations",
		}, []string{"urgency"}),
		rankEligible: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "rank_eligible_providers",
			Help:      "Eligible providers returned per ranking",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		rankLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "rank_latency_seconds",
			Help:      "Latency of provider ranking",
			Buckets:   prometheus.DefBuckets,
		}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "lifecycle",
			Name:      "transition_total",
			Help:      "Total care request lifecycle transitions",
		}, []string{"event", "outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.rankTotal, m.rankEligible, m.rankLatency, m.transitionTotal)
	return m
}

func (m *MatchingMetrics) ObserveRank(urgency string, eligible int, seconds float64) {
	if m == nil {
		return
	}
	m.rankTotal.WithLabelValues(urgency).Inc()
	m.rankEligible.Observe(float64(eligible))
	m.rankLatency.Observe(seconds)
}

func (m *MatchingMetrics) ObserveTransition(event, outcome string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(event, outcome).Inc()
}
