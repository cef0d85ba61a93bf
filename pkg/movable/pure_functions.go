package movable

import (
	"cmp"
	"slices"
)

// =============================================================================
// 1. ORDER CALCULATION
// =============================================================================

// CalculateInsertOrder returns an order value that sorts strictly between
// prev and next. A nil side means there is no boundary on that side.
func CalculateInsertOrder(prev, next *float64, gap float64) float64 {
	switch {
	case prev != nil && next != nil:
		return (*prev + *next) / 2
	case next != nil:
		// Halving only moves towards the head while next is positive.
		if *next > 0 {
			return *next / 2
		}
		return *next - gap
	case prev != nil:
		return *prev + gap
	default:
		return gap
	}
}

// orderOf returns the item's order or nil when it has none.
func orderOf(item OrderedItem) *float64 {
	if !item.HasOrder() {
		return nil
	}
	order := *item.Order
	return &order
}

// =============================================================================
// 2. PRECISION GUARD
// =============================================================================

// NeedsRebalancing reports whether any two adjacent order values are closer
// than minGap. Collections with fewer than two ordered items never need it.
func NeedsRebalancing(items []OrderedItem, minGap float64) bool {
	values := orderedValues(items)
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] < minGap {
			return true
		}
	}
	return false
}

// GapMetrics provides statistics about order value distribution
type GapMetrics struct {
	Total      int     `json:"total"`
	Ordered    int     `json:"ordered"`
	Unordered  int     `json:"unordered"`
	MinGap     float64 `json:"min_gap"`
	MaxGap     float64 `json:"max_gap"`
	AverageGap float64 `json:"average_gap"`
}

// CalculateGapMetrics summarises the spacing between adjacent order values.
// Gap fields stay zero when fewer than two items are ordered.
func CalculateGapMetrics(items []OrderedItem) GapMetrics {
	values := orderedValues(items)
	metrics := GapMetrics{
		Total:     len(items),
		Ordered:   len(values),
		Unordered: len(items) - len(values),
	}
	if len(values) < 2 {
		return metrics
	}

	metrics.MinGap = values[1] - values[0]
	metrics.MaxGap = metrics.MinGap
	for i := 2; i < len(values); i++ {
		gap := values[i] - values[i-1]
		metrics.MinGap = min(metrics.MinGap, gap)
		metrics.MaxGap = max(metrics.MaxGap, gap)
	}
	metrics.AverageGap = (values[len(values)-1] - values[0]) / float64(len(values)-1)
	return metrics
}

// =============================================================================
// 3. REBALANCING
// =============================================================================

// GenerateBalancedOrders returns count evenly spaced values gap, 2*gap, ...
func GenerateBalancedOrders(count int, gap float64) []float64 {
	if count <= 0 {
		return []float64{}
	}
	orders := make([]float64, count)
	for i := range orders {
		orders[i] = float64(i+1) * gap
	}
	return orders
}

// CalculateInitialOrders assigns orders to the items that have none, placing
// them after the largest existing order. Ordered items are never touched.
// With sortByName the unordered items are placed alphabetically, otherwise
// in input order.
func CalculateInitialOrders(items []OrderedItem, sortByName bool, gap float64) OrderMap {
	updates := make(OrderMap)

	unordered := make([]OrderedItem, 0)
	for _, item := range items {
		if !item.HasOrder() {
			unordered = append(unordered, item)
		}
	}
	if len(unordered) == 0 {
		return updates
	}

	if sortByName {
		slices.SortStableFunc(unordered, func(a, b OrderedItem) int {
			return cmp.Compare(a.Name, b.Name)
		})
	}

	base := 0.0
	if values := orderedValues(items); len(values) > 0 {
		base = values[len(values)-1]
	}
	for i, item := range unordered {
		updates[item.ID] = base + float64(i+1)*gap
	}
	return updates
}

// Rebalance renumbers the whole collection with evenly spaced orders while
// preserving its canonical sequence.
func Rebalance(items []OrderedItem, gap float64) OrderMap {
	sorted := SortByOrder(items)
	orders := GenerateBalancedOrders(len(sorted), gap)

	updates := make(OrderMap, len(sorted))
	for i, item := range sorted {
		updates[item.ID] = orders[i]
	}
	return updates
}

// RebalanceMove renumbers the collection with movingID placed at the 1-based
// target position. The sequence is built from positions, not from order
// values, so neighbours sharing an order cannot push the moved item off its
// slot.
func RebalanceMove(sorted []OrderedItem, movingID string, target int, gap float64) OrderMap {
	others := withoutItem(sorted, movingID)
	slot := clampPosition(target, len(others)) - 1
	orders := GenerateBalancedOrders(len(others)+1, gap)

	updates := make(OrderMap, len(orders))
	updates[movingID] = orders[slot]
	for i, item := range others {
		if i >= slot {
			i++
		}
		updates[item.ID] = orders[i]
	}
	return updates
}

// ChangedOrders keeps only the updates that target an item of the collection
// and actually change its stored order.
func ChangedOrders(items []OrderedItem, updates OrderMap) OrderMap {
	changed := make(OrderMap)
	for _, item := range items {
		order, ok := updates[item.ID]
		if !ok {
			continue
		}
		if item.Order != nil && *item.Order == order {
			continue
		}
		changed[item.ID] = order
	}
	return changed
}

// =============================================================================
// 4. POSITION MAPPING
// =============================================================================

// PositionToOrder returns the order that places movingID at the 1-based
// target position once the collection is re-sorted. sorted must already be
// in canonical order. Out of range targets are clamped to [1, N+1], where N
// counts the items other than movingID.
func PositionToOrder(target int, sorted []OrderedItem, movingID string, gap float64) float64 {
	others := withoutItem(sorted, movingID)
	n := len(others)
	pos := clampPosition(target, n)

	if n == 0 {
		return CalculateInsertOrder(nil, nil, gap)
	}
	if pos == 1 {
		return CalculateInsertOrder(nil, orderOf(others[0]), gap)
	}
	// The left boundary is the nearest ordered item before the slot;
	// unordered items sort last and give no numeric boundary.
	return CalculateInsertOrder(lastOrderBefore(others, pos-1), nextOrderAt(others, pos-1), gap)
}

// RelativePosition returns the 1-based position that puts movingID directly
// after or before targetID.
func RelativePosition(sorted []OrderedItem, movingID, targetID string, position MovePosition) (int, error) {
	if targetID == "" {
		return 0, ErrEmptyTargetID
	}
	if movingID == targetID {
		return 0, ErrSelfReference
	}

	targetPos, ok := VisualPosition(withoutItem(sorted, movingID), targetID)
	if !ok {
		return 0, ErrTargetNotFound
	}

	switch position {
	case MovePositionAfter:
		return targetPos + 1, nil
	case MovePositionBefore:
		return targetPos, nil
	default:
		return 0, ErrInvalidPosition
	}
}

// OrderRelativeTo returns the order that places movingID directly after or
// before targetID.
func OrderRelativeTo(sorted []OrderedItem, movingID, targetID string, position MovePosition, gap float64) (float64, error) {
	pos, err := RelativePosition(sorted, movingID, targetID, position)
	if err != nil {
		return 0, err
	}
	return PositionToOrder(pos, sorted, movingID, gap), nil
}

// clampPosition limits a 1-based target to [1, n+1] for n other items.
func clampPosition(target, n int) int {
	return min(max(target, 1), n+1)
}

// withoutItem filters id out of items, keeping the sequence.
func withoutItem(items []OrderedItem, id string) []OrderedItem {
	result := make([]OrderedItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			result = append(result, item)
		}
	}
	return result
}

// lastOrderBefore returns the order of the last ordered item in items[:end].
func lastOrderBefore(items []OrderedItem, end int) *float64 {
	for i := end - 1; i >= 0; i-- {
		if order := orderOf(items[i]); order != nil {
			return order
		}
	}
	return nil
}

// nextOrderAt returns the order of items[idx], or nil past the tail.
func nextOrderAt(items []OrderedItem, idx int) *float64 {
	if idx >= len(items) {
		return nil
	}
	return orderOf(items[idx])
}
