package movable

import "context"

// MovePosition represents the position relative to a target item
type MovePosition int

const (
	MovePositionUnspecified MovePosition = iota
	MovePositionAfter
	MovePositionBefore
)

func (p MovePosition) String() string {
	switch p {
	case MovePositionAfter:
		return "after"
	case MovePositionBefore:
		return "before"
	default:
		return "unspecified"
	}
}

// OrderedItem is a record participating in a user-reorderable list.
// Order is nil until the item has been placed.
type OrderedItem struct {
	ID    string   `json:"id" yaml:"id"`
	Order *float64 `json:"order,omitempty" yaml:"order,omitempty"`
	Name  string   `json:"name,omitempty" yaml:"name,omitempty"`
}

// HasOrder reports whether the item carries a usable order value. NaN and
// infinite values count as missing.
func (i OrderedItem) HasOrder() bool {
	return i.Order != nil && isFinite(*i.Order)
}

// WithOrder returns a copy of the item with order set.
func (i OrderedItem) WithOrder(order float64) OrderedItem {
	i.Order = &order
	return i
}

// OrderMap is a batch of id -> order writes.
type OrderMap map[string]float64

// Apply returns a copy of items with the orders from m written in.
func (m OrderMap) Apply(items []OrderedItem) []OrderedItem {
	result := make([]OrderedItem, len(items))
	for i, item := range items {
		if order, ok := m[item.ID]; ok {
			item = item.WithOrder(order)
		}
		result[i] = item
	}
	return result
}

// MoveOperation represents a move operation request relative to a target item
type MoveOperation struct {
	Scope    string
	ItemID   string
	TargetID string
	Position MovePosition
}

// MoveResult represents the result of a move operation
type MoveResult struct {
	ID         string   `json:"id"`
	Order      float64  `json:"order"`
	Position   int      `json:"position"`
	Backfilled int      `json:"backfilled,omitempty"`
	Rebalanced bool     `json:"rebalanced"`
	Updates    OrderMap `json:"updates"`
}

// Repository is the persistence boundary the Manager reads snapshots from
// and writes order values to.
type Repository interface {
	// ListItems returns every item of a scope, in no particular order.
	ListItems(ctx context.Context, scope string) ([]OrderedItem, error)

	// UpdateOrder writes a single order value.
	UpdateOrder(ctx context.Context, scope, id string, order float64) error

	// UpdateOrders writes all updates as one batch.
	UpdateOrders(ctx context.Context, scope string, updates OrderMap) error

	// ListScopes returns every known scope.
	ListScopes(ctx context.Context) ([]string, error)
}

// ItemWriter is implemented by stores that can add and remove items.
type ItemWriter interface {
	Create(ctx context.Context, scope string, item OrderedItem) error
	Delete(ctx context.Context, scope, id string) error
}

// Recorder receives counters for manager operations.
type Recorder interface {
	ObserveMove(scope string)
	ObserveBackfill(scope string, count int)
	ObserveRebalance(scope string, batchSize int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveMove(string)           {}
func (nopRecorder) ObserveBackfill(string, int)  {}
func (nopRecorder) ObserveRebalance(string, int) {}
