package movable

import (
	"cmp"
	"math"
	"slices"
)

// sortKey treats a missing or non-finite order as the largest representable value
// so unordered items land after every ordered one.
func sortKey(item OrderedItem) float64 {
	if !item.HasOrder() {
		return math.MaxFloat64
	}
	return *item.Order
}

// CompareItems is the canonical comparator: order ascending, then name,
// then id. It is a total order over items with distinct ids.
func CompareItems(a, b OrderedItem) int {
	if c := cmp.Compare(sortKey(a), sortKey(b)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortByOrder returns a sorted copy of items. The input slice is left untouched.
func SortByOrder(items []OrderedItem) []OrderedItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, CompareItems)
	return sorted
}

// IsSorted reports whether items are already in canonical order.
func IsSorted(items []OrderedItem) bool {
	return slices.IsSortedFunc(items, CompareItems)
}

// VisualPosition returns the 1-based position of id within sorted.
func VisualPosition(sorted []OrderedItem, id string) (int, bool) {
	idx := slices.IndexFunc(sorted, func(item OrderedItem) bool { return item.ID == id })
	if idx < 0 {
		return 0, false
	}
	return idx + 1, true
}

// orderedValues collects the defined orders of items in ascending order.
func orderedValues(items []OrderedItem) []float64 {
	values := make([]float64, 0, len(items))
	for _, item := range items {
		if item.HasOrder() {
			values = append(values, *item.Order)
		}
	}
	slices.Sort(values)
	return values
}
