package movable

import (
	"fmt"
	"slices"
)

// AppendPlan describes the outcome of a safe append planning step.
// It contains the values the caller should persist for the new item.
type AppendPlan struct {
	NewItemID string
	// PrevID is the current tail the new item lands after ("" when the list is empty).
	PrevID string
	// Order places the new item after the current maximum order.
	Order float64
	// Warnings collects non-fatal findings. On fatal issues, the planner returns an error.
	Warnings []string
}

// PlanAppend computes an AppendPlan from already-fetched items. It performs
// preflight checks and returns warnings for non-fatal anomalies.
func PlanAppend(items []OrderedItem, newID string, gap float64) (AppendPlan, error) {
	if newID == "" {
		return AppendPlan{}, ErrEmptyItemID
	}

	warnings, err := CheckListIntegrity(items)
	if err != nil {
		return AppendPlan{}, err
	}

	// Idempotency guard.
	if slices.ContainsFunc(items, func(item OrderedItem) bool { return item.ID == newID }) {
		return AppendPlan{}, fmt.Errorf("%w: %s", ErrItemExists, newID)
	}

	plan := AppendPlan{
		NewItemID: newID,
		Warnings:  warnings,
	}

	var tail *OrderedItem
	for i := range items {
		if !items[i].HasOrder() {
			continue
		}
		if tail == nil || *items[i].Order > *tail.Order {
			tail = &items[i]
		}
	}
	if tail == nil {
		plan.Order = CalculateInsertOrder(nil, nil, gap)
		return plan, nil
	}

	plan.PrevID = tail.ID
	plan.Order = CalculateInsertOrder(orderOf(*tail), nil, gap)
	return plan, nil
}

// CheckListIntegrity validates list invariants and issues warnings for
// non-fatal anomalies. Empty or duplicate ids are fatal; shared, non-finite
// or missing order values are reported as warnings because the sorter
// tolerates them until the next rebalance or backfill.
func CheckListIntegrity(items []OrderedItem) ([]string, error) {
	warnings := make([]string, 0)

	seen := make(map[string]struct{}, len(items))
	orderCount := make(map[float64]int)
	unordered := 0
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("integrity: %w (index %d)", ErrEmptyItemID, i)
		}
		if _, ok := seen[item.ID]; ok {
			return nil, fmt.Errorf("integrity: %w %s", ErrDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}

		switch {
		case item.Order == nil:
			unordered++
		case !item.HasOrder():
			unordered++
			warnings = append(warnings, fmt.Sprintf("item %s has non-finite order %v", item.ID, *item.Order))
		default:
			orderCount[*item.Order]++
		}
	}

	shared := make([]float64, 0)
	for order, count := range orderCount {
		if count > 1 {
			shared = append(shared, order)
		}
	}
	slices.Sort(shared)
	for _, order := range shared {
		warnings = append(warnings, fmt.Sprintf("order %v shared by %d items", order, orderCount[order]))
	}

	if unordered > 0 {
		warnings = append(warnings, fmt.Sprintf("%d items have no order; backfill pending", unordered))
	}

	return warnings, nil
}
