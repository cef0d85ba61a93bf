package snapshot

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

// DefaultScope names snapshots that do not carry a scope.
const DefaultScope = "default"

// Store serves a single snapshot as a movable.Repository so the manager can
// plan changes on a file without touching a real store.
type Store struct {
	mu    sync.RWMutex
	scope string
	items []movable.OrderedItem
}

var (
	_ movable.Repository = (*Store)(nil)
	_ movable.ItemWriter = (*Store)(nil)
)

func NewStore(snap Snapshot) *Store {
	scope := snap.Scope
	if scope == "" {
		scope = DefaultScope
	}
	return &Store{
		scope: scope,
		items: slices.Clone(snap.Items),
	}
}

func (s *Store) Scope() string {
	return s.scope
}

// Snapshot returns the current items in their original file order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Scope: s.scope, Items: slices.Clone(s.items)}
}

func (s *Store) ListItems(_ context.Context, scope string) ([]movable.OrderedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if scope != s.scope {
		return []movable.OrderedItem{}, nil
	}
	return slices.Clone(s.items), nil
}

func (s *Store) UpdateOrder(ctx context.Context, scope, id string, order float64) error {
	return s.UpdateOrders(ctx, scope, movable.OrderMap{id: order})
}

func (s *Store) UpdateOrders(_ context.Context, scope string, updates movable.OrderMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scope != s.scope {
		return fmt.Errorf("%w: scope %s", movable.ErrItemNotFound, scope)
	}
	for id := range updates {
		if s.index(id) < 0 {
			return fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
		}
	}
	s.items = updates.Apply(s.items)
	return nil
}

func (s *Store) ListScopes(context.Context) ([]string, error) {
	return []string{s.scope}, nil
}

func (s *Store) Create(_ context.Context, scope string, item movable.OrderedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scope != s.scope {
		return fmt.Errorf("snapshot holds scope %s, not %s", s.scope, scope)
	}
	if s.index(item.ID) >= 0 {
		return fmt.Errorf("%w: %s", movable.ErrItemExists, item.ID)
	}
	s.items = append(s.items, item)
	return nil
}

func (s *Store) Delete(_ context.Context, scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if scope != s.scope || i < 0 {
		return fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(item movable.OrderedItem) bool { return item.ID == id })
}
