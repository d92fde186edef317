package selection

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultHit     = "hit"
	resultPartial = "partial"
	resultMiss    = "miss"
	resultError   = "error"
)

// Metrics are the prometheus collectors of the runner and the scorer.
// A nil *Metrics records nothing.
type Metrics struct {
	evaluations   *prometheus.CounterVec
	trials        *prometheus.CounterVec
	trialDuration prometheus.Histogram
	proxyFits     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	var factory = promauto.With(reg)
	return &Metrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "input_selection",
			Subsystem: "runner",
			Name:      "evaluations_total",
			Help:      "Subset evaluations by cache result",
		}, []string{"result"}),
		trials: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "input_selection",
			Subsystem: "runner",
			Name:      "trials_total",
			Help:      "Training runs by algorithm",
		}, []string{"algorithm"}),
		trialDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "input_selection",
			Subsystem: "runner",
			Name:      "trial_duration_seconds",
			Help:      "Duration of one training run",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		proxyFits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "input_selection",
			Subsystem: "scorer",
			Name:      "proxy_fits_total",
			Help:      "Logistic proxy models fitted",
		}),
	}
}

func (m *Metrics) observeEvaluation(result string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(result).Inc()
}

func (m *Metrics) observeTrial(kind AlgorithmKind, duration time.Duration) {
	if m == nil {
		return
	}
	m.trials.WithLabelValues(kind.String()).Inc()
	m.trialDuration.Observe(duration.Seconds())
}

func (m *Metrics) observeProxyFit() {
	if m == nil {
		return
	}
	m.proxyFits.Inc()
}
