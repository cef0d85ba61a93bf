package movable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"golang.org/x/sync/errgroup"
)

// checkConcurrency bounds the number of scopes checked at once.
const checkConcurrency = 4

// Manager applies the ordering rules to collections held by a Repository.
// It keeps no mutable state and is safe for concurrent use; concurrent moves
// within one scope race at the store and the last write wins.
type Manager struct {
	repo     Repository
	config   Config
	logger   *slog.Logger
	recorder Recorder
}

// NewManager creates a Manager over repo. A nil logger falls back to slog.Default().
func NewManager(repo Repository, config Config, logger *slog.Logger) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("repository cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		repo:     repo,
		config:   config,
		logger:   logger,
		recorder: nopRecorder{},
	}, nil
}

// WithRecorder returns a copy of the manager reporting to r.
func (m *Manager) WithRecorder(r Recorder) *Manager {
	clone := *m
	if r == nil {
		r = nopRecorder{}
	}
	clone.recorder = r
	return &clone
}

func (m *Manager) Config() Config {
	return m.config
}

// Report summarises the ordering health of one scope.
type Report struct {
	Scope            string     `json:"scope"`
	Metrics          GapMetrics `json:"metrics"`
	NeedsRebalancing bool       `json:"needs_rebalancing"`
	Warnings         []string   `json:"warnings,omitempty"`
}

// Items returns the scope's items in visual order.
func (m *Manager) Items(ctx context.Context, scope string) ([]OrderedItem, error) {
	items, err := m.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}
	return SortByOrder(items), nil
}

// MoveToPosition moves id to the 1-based visual position. Out of range
// positions are clamped.
func (m *Manager) MoveToPosition(ctx context.Context, scope, id string, position int) (*MoveResult, error) {
	if id == "" {
		return nil, ErrEmptyItemID
	}
	state, err := m.prepare(ctx, scope)
	if err != nil {
		return nil, err
	}
	if _, ok := VisualPosition(state.sorted, id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return m.commit(ctx, scope, id, position, state)
}

// Move places an item directly after or before a target item.
func (m *Manager) Move(ctx context.Context, operation MoveOperation) (*MoveResult, error) {
	if operation.ItemID == "" {
		return nil, ErrEmptyItemID
	}
	if operation.Position != MovePositionAfter && operation.Position != MovePositionBefore {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, operation.Position)
	}
	state, err := m.prepare(ctx, operation.Scope)
	if err != nil {
		return nil, err
	}
	if _, ok := VisualPosition(state.sorted, operation.ItemID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, operation.ItemID)
	}

	position, err := RelativePosition(state.sorted, operation.ItemID, operation.TargetID, operation.Position)
	if err != nil {
		return nil, fmt.Errorf("move %s %s %s: %w", operation.ItemID, operation.Position, operation.TargetID, err)
	}
	return m.commit(ctx, operation.Scope, operation.ItemID, position, state)
}

// PlanAppend computes the order for a new item at the tail of scope. Nothing
// is written; the caller persists the item with the planned order.
func (m *Manager) PlanAppend(ctx context.Context, scope, id string) (AppendPlan, error) {
	items, err := m.snapshot(ctx, scope)
	if err != nil {
		return AppendPlan{}, err
	}
	plan, err := PlanAppend(items, id, m.config.Gap)
	if err != nil {
		return AppendPlan{}, err
	}
	for _, warning := range plan.Warnings {
		m.logger.Warn("Append integrity warning", "scope", scope, "item_id", id, "warning", warning)
	}
	return plan, nil
}

// Append adds a new item at the tail of scope. The repository must also
// implement ItemWriter.
func (m *Manager) Append(ctx context.Context, scope, id, name string) (AppendPlan, error) {
	writer, ok := m.repo.(ItemWriter)
	if !ok {
		return AppendPlan{}, ErrReadOnlyStore
	}
	plan, err := m.PlanAppend(ctx, scope, id)
	if err != nil {
		return AppendPlan{}, err
	}
	item := OrderedItem{ID: id, Name: name}.WithOrder(plan.Order)
	if err := writer.Create(ctx, scope, item); err != nil {
		return AppendPlan{}, fmt.Errorf("append %s: %w", id, err)
	}
	m.logger.Info("Appended item", "scope", scope, "item_id", id, "order", plan.Order, "prev_id", plan.PrevID)
	return plan, nil
}

// Remove deletes an item from scope. Remaining orders are untouched; gaps
// left behind stay valid.
func (m *Manager) Remove(ctx context.Context, scope, id string) error {
	writer, ok := m.repo.(ItemWriter)
	if !ok {
		return ErrReadOnlyStore
	}
	if scope == "" {
		return ErrEmptyScope
	}
	if id == "" {
		return ErrEmptyItemID
	}
	if err := writer.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	m.logger.Info("Removed item", "scope", scope, "item_id", id)
	return nil
}

// Backfill assigns orders to every unordered item of scope.
func (m *Manager) Backfill(ctx context.Context, scope string, sortByName bool) (OrderMap, error) {
	items, err := m.snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}
	updates := m.config.InitialOrders(items, sortByName)
	if len(updates) == 0 {
		return updates, nil
	}
	if err := m.repo.UpdateOrders(ctx, scope, updates); err != nil {
		return nil, fmt.Errorf("backfill %s: %w", scope, err)
	}
	m.recorder.ObserveBackfill(scope, len(updates))
	m.logger.Info("Backfilled orders", "scope", scope, "count", len(updates))
	return updates, nil
}

// Rebalance renumbers scope when the precision guard fires, or always when
// force is set. Only changed orders are written, as one batch.
func (m *Manager) Rebalance(ctx context.Context, scope string, force bool) (OrderMap, bool, error) {
	items, err := m.snapshot(ctx, scope)
	if err != nil {
		return nil, false, err
	}
	if !force && !m.config.NeedsRebalancing(items) {
		m.logger.Debug("Rebalance not needed", "scope", scope)
		return OrderMap{}, false, nil
	}

	updates := ChangedOrders(items, m.config.Rebalance(items))
	if len(updates) > 0 {
		if err := m.repo.UpdateOrders(ctx, scope, updates); err != nil {
			return nil, false, fmt.Errorf("rebalance %s: %w", scope, err)
		}
	}
	m.recorder.ObserveRebalance(scope, len(updates))
	m.logger.Info("Rebalanced scope", "scope", scope, "changed", len(updates), "forced", force)
	return updates, true, nil
}

// Check reports integrity warnings and spacing for scope.
func (m *Manager) Check(ctx context.Context, scope string) (Report, error) {
	if scope == "" {
		return Report{}, ErrEmptyScope
	}
	items, err := m.repo.ListItems(ctx, scope)
	if err != nil {
		return Report{}, fmt.Errorf("list %s: %w", scope, err)
	}
	warnings, err := CheckListIntegrity(items)
	if err != nil {
		return Report{}, fmt.Errorf("check %s: %w", scope, err)
	}
	return Report{
		Scope:            scope,
		Metrics:          CalculateGapMetrics(items),
		NeedsRebalancing: m.config.NeedsRebalancing(items),
		Warnings:         warnings,
	}, nil
}

// CheckScopes runs Check over scopes concurrently. An empty scopes slice
// checks every scope known to the repository.
func (m *Manager) CheckScopes(ctx context.Context, scopes []string) ([]Report, error) {
	if len(scopes) == 0 {
		var err error
		scopes, err = m.repo.ListScopes(ctx)
		if err != nil {
			return nil, fmt.Errorf("list scopes: %w", err)
		}
	}

	reports := make([]Report, len(scopes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for i, scope := range scopes {
		g.Go(func() error {
			report, err := m.Check(gctx, scope)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// snapshot reads scope and rejects collections with fatal integrity issues.
func (m *Manager) snapshot(ctx context.Context, scope string) ([]OrderedItem, error) {
	if scope == "" {
		return nil, ErrEmptyScope
	}
	items, err := m.repo.ListItems(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	if _, err := CheckListIntegrity(items); err != nil {
		return nil, err
	}
	return items, nil
}

// moveState is a scope as read before a move, with the pending backfill
// already applied to sorted.
type moveState struct {
	stored   []OrderedItem
	sorted   []OrderedItem
	backfill OrderMap
}

// prepare reads scope and plans a backfill of unordered items so every
// neighbour has a numeric boundary. Backfill sorts by name, which matches how
// the sorter already shows unordered items. Nothing is written here; the
// backfill goes out with the move.
func (m *Manager) prepare(ctx context.Context, scope string) (moveState, error) {
	items, err := m.snapshot(ctx, scope)
	if err != nil {
		return moveState{}, err
	}
	backfill := m.config.InitialOrders(items, true)
	return moveState{
		stored:   items,
		sorted:   SortByOrder(backfill.Apply(items)),
		backfill: backfill,
	}, nil
}

// commit persists the move of id to the 1-based position together with any
// pending backfill. When the midpoint exhausts precision, or ties between
// neighbours would let the sort put the item elsewhere, the scope is
// renumbered around the requested slot instead. Either way the store sees
// one write.
func (m *Manager) commit(ctx context.Context, scope, id string, position int, state moveState) (*MoveResult, error) {
	slot := min(max(position, 1), len(state.sorted))
	order := m.config.PositionToOrder(slot, state.sorted, id)
	next := OrderMap{id: order}.Apply(state.sorted)
	landed, _ := VisualPosition(SortByOrder(next), id)

	result := &MoveResult{
		ID:         id,
		Order:      order,
		Position:   slot,
		Backfilled: len(state.backfill),
	}

	var updates OrderMap
	if landed != slot || m.config.NeedsRebalancing(next) {
		balanced := m.config.RebalanceMove(state.sorted, id, slot)
		updates = ChangedOrders(state.stored, balanced)
		result.Order = balanced[id]
		result.Rebalanced = true
	} else {
		updates = make(OrderMap, len(state.backfill)+1)
		maps.Copy(updates, state.backfill)
		updates[id] = order
	}

	switch {
	case !result.Rebalanced && len(state.backfill) == 0:
		if err := m.repo.UpdateOrder(ctx, scope, id, order); err != nil {
			return nil, fmt.Errorf("update order of %s: %w", id, err)
		}
	case len(updates) > 0:
		if err := m.repo.UpdateOrders(ctx, scope, updates); err != nil {
			return nil, fmt.Errorf("move %s in %s: %w", id, scope, err)
		}
	}
	result.Updates = updates

	if len(state.backfill) > 0 {
		m.recorder.ObserveBackfill(scope, len(state.backfill))
		m.logger.Debug("Backfilled unordered items", "scope", scope, "count", len(state.backfill))
	}
	if result.Rebalanced {
		m.recorder.ObserveRebalance(scope, len(updates))
		m.logger.Info("Rebalanced scope after move", "scope", scope, "item_id", id, "changed", len(updates))
	}
	m.recorder.ObserveMove(scope)
	m.logger.Debug("Moved item",
		"scope", scope,
		"item_id", id,
		"order", result.Order,
		"position", result.Position,
		"rebalanced", result.Rebalanced)
	return result, nil
}
