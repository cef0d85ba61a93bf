// Package redisorder keeps ordered collections in Redis. Each scope maps to a
// sorted set of display orders, a hash of names and a set of member ids, so
// items without an order still belong to their scope.
package redisorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/the-dev-tools/ordering/pkg/movable"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "ordering:"

// maxRetries bounds optimistic transaction retries when a watched scope
// changes underneath a batch write.
const maxRetries = 3

// Store implements movable.Repository on top of Redis
type Store struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

var _ movable.Repository = (*Store)(nil)

// NewStore connects to redisURL and verifies the connection
func NewStore(redisURL, prefix string, logger *slog.Logger) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewStoreWithClient(client, prefix, logger), nil
}

// NewStoreWithClient creates a store from an existing Redis client
func NewStoreWithClient(client *redis.Client, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *Store) orderKey(scope string) string { return s.prefix + scope + ":order" }
func (s *Store) nameKey(scope string) string  { return s.prefix + scope + ":name" }
func (s *Store) itemsKey(scope string) string { return s.prefix + scope + ":items" }
func (s *Store) scopesKey() string            { return s.prefix + "scopes" }

// Create adds an item to scope. Its order may be nil. The member check and
// every write run against the watched member set, so a racing create or
// delete of the same id retries instead of interleaving.
func (s *Store) Create(ctx context.Context, scope string, item movable.OrderedItem) error {
	if scope == "" {
		return movable.ErrEmptyScope
	}
	if item.ID == "" {
		return movable.ErrEmptyItemID
	}
	itemsKey := s.itemsKey(scope)

	err := s.watch(ctx, "create item", func(tx *redis.Tx) error {
		exists, err := tx.SIsMember(ctx, itemsKey, item.ID).Result()
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", movable.ErrItemExists, item.ID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, itemsKey, item.ID)
			pipe.SAdd(ctx, s.scopesKey(), scope)
			pipe.HSet(ctx, s.nameKey(scope), item.ID, item.Name)
			if item.HasOrder() {
				pipe.ZAdd(ctx, s.orderKey(scope), redis.Z{Score: *item.Order, Member: item.ID})
			}
			return nil
		})
		return err
	}, itemsKey)
	if err != nil {
		return err
	}
	s.logger.Debug("Created item", "scope", scope, "item_id", item.ID)
	return nil
}

// Get returns a single item of scope
func (s *Store) Get(ctx context.Context, scope, id string) (movable.OrderedItem, error) {
	var (
		member *redis.BoolCmd
		name   *redis.StringCmd
		score  *redis.FloatCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		member = pipe.SIsMember(ctx, s.itemsKey(scope), id)
		name = pipe.HGet(ctx, s.nameKey(scope), id)
		score = pipe.ZScore(ctx, s.orderKey(scope), id)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return movable.OrderedItem{}, fmt.Errorf("get item: %w", err)
	}
	if !member.Val() {
		return movable.OrderedItem{}, fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
	}

	item := movable.OrderedItem{ID: id, Name: name.Val()}
	if order, err := score.Result(); err == nil {
		item = item.WithOrder(order)
	}
	return item, nil
}

// Delete removes an item. Empty scopes are dropped from the scope index in
// the same transaction.
func (s *Store) Delete(ctx context.Context, scope, id string) error {
	itemsKey := s.itemsKey(scope)

	err := s.watch(ctx, "delete item", func(tx *redis.Tx) error {
		exists, err := tx.SIsMember(ctx, itemsKey, id).Result()
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", movable.ErrItemNotFound, id)
		}
		count, err := tx.SCard(ctx, itemsKey).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SRem(ctx, itemsKey, id)
			pipe.ZRem(ctx, s.orderKey(scope), id)
			pipe.HDel(ctx, s.nameKey(scope), id)
			if count == 1 {
				pipe.SRem(ctx, s.scopesKey(), scope)
			}
			return nil
		})
		return err
	}, itemsKey)
	if err != nil {
		return err
	}
	s.logger.Debug("Deleted item", "scope", scope, "item_id", id)
	return nil
}

func (s *Store) ListItems(ctx context.Context, scope string) ([]movable.OrderedItem, error) {
	var (
		members *redis.StringSliceCmd
		names   *redis.MapStringStringCmd
		scores  *redis.ZSliceCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		members = pipe.SMembers(ctx, s.itemsKey(scope))
		names = pipe.HGetAll(ctx, s.nameKey(scope))
		scores = pipe.ZRangeWithScores(ctx, s.orderKey(scope), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	orders := make(map[string]float64, len(scores.Val()))
	for _, z := range scores.Val() {
		if id, ok := z.Member.(string); ok {
			orders[id] = z.Score
		}
	}

	ids := members.Val()
	slices.Sort(ids)
	items := make([]movable.OrderedItem, 0, len(ids))
	for _, id := range ids {
		item := movable.OrderedItem{ID: id, Name: names.Val()[id]}
		if order, ok := orders[id]; ok {
			item = item.WithOrder(order)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) UpdateOrder(ctx context.Context, scope, id string, order float64) error {
	return s.UpdateOrders(ctx, scope, movable.OrderMap{id: order})
}

// UpdateOrders writes the batch in one MULTI/EXEC. The member set is watched
// so a concurrent delete aborts the batch instead of resurrecting an order.
func (s *Store) UpdateOrders(ctx context.Context, scope string, updates movable.OrderMap) error {
	if len(updates) == 0 {
		return nil
	}
	ids := slices.Sorted(maps.Keys(updates))
	itemsKey := s.itemsKey(scope)

	txf := func(tx *redis.Tx) error {
		present, err := tx.SMIsMember(ctx, itemsKey, toAny(ids)...).Result()
		if err != nil {
			return err
		}
		for i, ok := range present {
			if !ok {
				return fmt.Errorf("%w: %s", movable.ErrItemNotFound, ids[i])
			}
		}

		members := make([]redis.Z, len(ids))
		for i, id := range ids {
			members[i] = redis.Z{Score: updates[id], Member: id}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZAdd(ctx, s.orderKey(scope), members...)
			return nil
		})
		return err
	}

	return s.watch(ctx, "update orders", txf, itemsKey)
}

// watch runs txf under WATCH on keys and retries when a watched key changes
// before EXEC. Item errors from txf are returned as is.
func (s *Store) watch(ctx context.Context, op string, txf func(*redis.Tx) error, keys ...string) error {
	for range maxRetries {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("Retrying transaction", "op", op, "keys", keys)
			continue
		}
		if err != nil {
			if errors.Is(err, movable.ErrItemNotFound) || errors.Is(err, movable.ErrItemExists) {
				return err
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", op, redis.TxFailedErr)
}

func (s *Store) ListScopes(ctx context.Context) ([]string, error) {
	scopes, err := s.client.SMembers(ctx, s.scopesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	slices.Sort(scopes)
	return scopes, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
