package movable

import (
	"fmt"
	"math"
)

const (
	// DefaultGap is the spacing used for tail inserts and rebalancing.
	DefaultGap = 1000.0
	// DefaultMinGap is the smallest adjacent gap tolerated before a rebalance is due.
	DefaultMinGap = 1e-4
)

// Config carries the spacing parameters of the ordering scheme. It is
// immutable once built; every method is a pure function of its inputs.
type Config struct {
	Gap    float64
	MinGap float64
}

func DefaultConfig() Config {
	return Config{Gap: DefaultGap, MinGap: DefaultMinGap}
}

// Validate rejects configurations that cannot produce a usable ordering.
func (c Config) Validate() error {
	switch {
	case !isFinite(c.Gap) || c.Gap <= 0:
		return fmt.Errorf("%w: gap must be a positive finite number, got %v", ErrInvalidConfig, c.Gap)
	case !isFinite(c.MinGap) || c.MinGap <= 0:
		return fmt.Errorf("%w: min gap must be a positive finite number, got %v", ErrInvalidConfig, c.MinGap)
	case c.MinGap >= c.Gap:
		return fmt.Errorf("%w: min gap %v must be smaller than gap %v", ErrInvalidConfig, c.MinGap, c.Gap)
	}
	return nil
}

func (c Config) NeedsRebalancing(items []OrderedItem) bool {
	return NeedsRebalancing(items, c.MinGap)
}

func (c Config) InitialOrders(items []OrderedItem, sortByName bool) OrderMap {
	return CalculateInitialOrders(items, sortByName, c.Gap)
}

func (c Config) Rebalance(items []OrderedItem) OrderMap {
	return Rebalance(items, c.Gap)
}

func (c Config) RebalanceMove(sorted []OrderedItem, movingID string, target int) OrderMap {
	return RebalanceMove(sorted, movingID, target, c.Gap)
}

func (c Config) PositionToOrder(target int, sorted []OrderedItem, movingID string) float64 {
	return PositionToOrder(target, sorted, movingID, c.Gap)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
