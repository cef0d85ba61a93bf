package sorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	orderdb "github.com/the-dev-tools/ordering/pkg/db"
	"github.com/the-dev-tools/ordering/pkg/db/sqlq"
	"github.com/the-dev-tools/ordering/pkg/movable"
)

// OrderService stores ordered items in sqlite and implements
// movable.Repository.
type OrderService struct {
	// db is nil for transaction-bound instances; batch writes then join
	// the caller's transaction instead of opening their own.
	db      *sql.DB
	queries *sqlq.Queries
	logger  *slog.Logger
}

var _ movable.Repository = (*OrderService)(nil)

// New creates a new OrderService
func New(db *sql.DB, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		db:      db,
		queries: sqlq.New(db),
		logger:  logger,
	}
}

// TX returns a new service instance bound to tx
func (s *OrderService) TX(tx *sql.Tx) *OrderService {
	if tx == nil {
		return s
	}
	return &OrderService{
		queries: s.queries.WithTx(tx),
		logger:  s.logger,
	}
}

// Create inserts a new item. Its order may be nil.
func (s *OrderService) Create(ctx context.Context, scope string, item movable.OrderedItem) error {
	if scope == "" {
		return movable.ErrEmptyScope
	}
	if item.ID == "" {
		return movable.ErrEmptyItemID
	}
	row := ConvertToDBItem(scope, item)
	err := s.queries.CreateOrderedItem(ctx, sqlq.CreateOrderedItemParams(row))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", movable.ErrItemExists, item.ID)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}
	s.logger.Debug("Created item", "scope", scope, "item_id", item.ID)
	return nil
}

// Get retrieves a single item
func (s *OrderService) Get(ctx context.Context, scope, id string) (movable.OrderedItem, error) {
	row, err := s.queries.GetOrderedItem(ctx, scope, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return movable.OrderedItem{}, fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
		}
		return movable.OrderedItem{}, fmt.Errorf("failed to get item: %w", err)
	}
	return ConvertToModelItem(row), nil
}

// Delete removes an item; the remaining orders are left as they are.
func (s *OrderService) Delete(ctx context.Context, scope, id string) error {
	n, err := s.queries.DeleteOrderedItem(ctx, scope, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
	}
	s.logger.Debug("Deleted item", "scope", scope, "item_id", id)
	return nil
}

func (s *OrderService) ListItems(ctx context.Context, scope string) ([]movable.OrderedItem, error) {
	rows, err := s.queries.GetOrderedItemsByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items := make([]movable.OrderedItem, len(rows))
	for i, row := range rows {
		items[i] = ConvertToModelItem(row)
	}
	return items, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, scope, id string, order float64) error {
	return updateOrder(ctx, s.queries, scope, id, order)
}

// UpdateOrders writes every update inside a single transaction so readers
// never observe a half-applied rebalance.
func (s *OrderService) UpdateOrders(ctx context.Context, scope string, updates movable.OrderMap) error {
	if len(updates) == 0 {
		return nil
	}
	if s.db == nil {
		return applyOrders(ctx, s.queries, scope, updates)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer orderdb.TxnRollback(tx, s.logger)

	if err := s.TX(tx).UpdateOrders(ctx, scope, updates); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}
	s.logger.Debug("Updated orders", "scope", scope, "count", len(updates))
	return nil
}

func (s *OrderService) ListScopes(ctx context.Context) ([]string, error) {
	scopes, err := s.queries.GetScopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}
	return scopes, nil
}

func applyOrders(ctx context.Context, queries *sqlq.Queries, scope string, updates movable.OrderMap) error {
	// Sorted ids keep the write sequence reproducible.
	for _, id := range slices.Sorted(maps.Keys(updates)) {
		if err := updateOrder(ctx, queries, scope, id, updates[id]); err != nil {
			return err
		}
	}
	return nil
}

func updateOrder(ctx context.Context, queries *sqlq.Queries, scope, id string, order float64) error {
	n, err := queries.UpdateOrderedItemOrder(ctx, sqlq.UpdateOrderedItemOrderParams{
		DisplayOrder: sql.NullFloat64{Float64: order, Valid: true},
		Scope:        scope,
		ID:           id,
	})
	if err != nil {
		return fmt.Errorf("failed to update order of %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
