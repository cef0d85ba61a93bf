package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/pkg/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveMove("board")
	m.ObserveMove("board")
	m.ObserveMove("tasks")
	m.ObserveBackfill("board", 3)

	expected := `
# HELP ordering_moves_total The total number of item moves.
# TYPE ordering_moves_total counter
ordering_moves_total{scope="board"} 2
ordering_moves_total{scope="tasks"} 1
# HELP ordering_backfilled_items_total The total number of items that received an initial order.
# TYPE ordering_backfilled_items_total counter
ordering_backfilled_items_total{scope="board"} 3
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"ordering_moves_total", "ordering_backfilled_items_total")
	assert.NoError(t, err)
}

func TestMetrics_Rebalance(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveRebalance("board", 2)
	m.ObserveRebalance("board", 40)

	count, err := testutil.GatherAndCount(reg, "ordering_rebalances_total", "ordering_rebalance_batch_size")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		switch mf.GetName() {
		case "ordering_rebalances_total":
			assert.Equal(t, 2.0, mf.GetMetric()[0].GetCounter().GetValue())
		case "ordering_rebalance_batch_size":
			h := mf.GetMetric()[0].GetHistogram()
			assert.Equal(t, uint64(2), h.GetSampleCount())
			assert.Equal(t, 42.0, h.GetSampleSum())
		}
	}
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
