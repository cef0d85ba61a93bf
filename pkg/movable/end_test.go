package movable_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

func TestPlanAppend(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		plan, err := movable.PlanAppend(nil, "new", gap)
		require.NoError(t, err)
		assert.Equal(t, gap, plan.Order)
		assert.Empty(t, plan.PrevID)
		assert.Empty(t, plan.Warnings)
	})

	t.Run("after max order", func(t *testing.T) {
		items := []movable.OrderedItem{
			item("b", ptr(2500), "B"),
			item("a", ptr(1000), "A"),
		}
		plan, err := movable.PlanAppend(items, "new", gap)
		require.NoError(t, err)
		assert.Equal(t, "b", plan.PrevID)
		assert.Equal(t, 3500.0, plan.Order)
	})

	t.Run("unordered items produce warning", func(t *testing.T) {
		items := []movable.OrderedItem{
			item("a", ptr(1000), "A"),
			item("u", nil, "U"),
		}
		plan, err := movable.PlanAppend(items, "new", gap)
		require.NoError(t, err)
		assert.Equal(t, 2000.0, plan.Order)
		assert.Contains(t, plan.Warnings, "1 items have no order; backfill pending")
	})

	t.Run("existing id rejected", func(t *testing.T) {
		_, err := movable.PlanAppend(sequence(2), "item-01", gap)
		assert.ErrorIs(t, err, movable.ErrItemExists)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		_, err := movable.PlanAppend(sequence(2), "", gap)
		assert.ErrorIs(t, err, movable.ErrEmptyItemID)
	})
}

func TestCheckListIntegrity(t *testing.T) {
	t.Run("clean list", func(t *testing.T) {
		warnings, err := movable.CheckListIntegrity(sequence(4))
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := movable.CheckListIntegrity([]movable.OrderedItem{
			item("a", ptr(1), "A"),
			item("a", ptr(2), "A"),
		})
		assert.ErrorIs(t, err, movable.ErrDuplicateID)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := movable.CheckListIntegrity([]movable.OrderedItem{item("", ptr(1), "A")})
		assert.ErrorIs(t, err, movable.ErrEmptyItemID)
	})

	t.Run("warnings", func(t *testing.T) {
		warnings, err := movable.CheckListIntegrity([]movable.OrderedItem{
			item("a", ptr(7), "A"),
			item("b", ptr(7), "B"),
			item("c", ptr(math.NaN()), "C"),
			item("d", nil, "D"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"item c has non-finite order NaN",
			"order 7 shared by 2 items",
			"2 items have no order; backfill pending",
		}, warnings)
	})
}
