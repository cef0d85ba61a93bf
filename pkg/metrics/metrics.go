// Package metrics exports manager activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

const (
	namespace  = "ordering"
	scopeLabel = "scope"
)

// Metrics implements movable.Recorder.
type Metrics struct {
	movesTotal           *prometheus.CounterVec
	rebalancesTotal      *prometheus.CounterVec
	backfilledItemsTotal *prometheus.CounterVec
	rebalanceBatchSize   prometheus.Histogram
}

var _ movable.Recorder = (*Metrics)(nil)

// New registers the ordering metrics on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		movesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "The total number of item moves.",
		}, []string{scopeLabel}),
		rebalancesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebalances_total",
			Help:      "The total number of scope rebalances.",
		}, []string{scopeLabel}),
		backfilledItemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backfilled_items_total",
			Help:      "The total number of items that received an initial order.",
		}, []string{scopeLabel}),
		rebalanceBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebalance_batch_size",
			Help:      "Number of orders rewritten per rebalance.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (m *Metrics) ObserveMove(scope string) {
	m.movesTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) ObserveBackfill(scope string, count int) {
	m.backfilledItemsTotal.WithLabelValues(scope).Add(float64(count))
}

func (m *Metrics) ObserveRebalance(scope string, batchSize int) {
	m.rebalancesTotal.WithLabelValues(scope).Inc()
	m.rebalanceBatchSize.Observe(float64(batchSize))
}
