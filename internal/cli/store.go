package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/the-dev-tools/ordering/pkg/config"
	orderdb "github.com/the-dev-tools/ordering/pkg/db"
	"github.com/the-dev-tools/ordering/pkg/movable"
	"github.com/the-dev-tools/ordering/pkg/redisorder"
	"github.com/the-dev-tools/ordering/pkg/service/sorder"
)

// itemStore is a repository that can also add, fetch and remove items.
type itemStore interface {
	movable.Repository
	movable.ItemWriter
	Get(ctx context.Context, scope, id string) (movable.OrderedItem, error)
	Close() error
}

type sqliteStore struct {
	*sorder.OrderService
	close func() error
}

func (s sqliteStore) Close() error { return s.close() }

func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (itemStore, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := orderdb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Debug("Opened sqlite store", "path", cfg.SQLitePath)
		return sqliteStore{OrderService: sorder.New(db, logger), close: db.Close}, nil
	case config.DriverRedis:
		st, err := redisorder.NewStore(cfg.RedisURL, cfg.RedisPrefix, logger)
		if err != nil {
			return nil, err
		}
		logger.Debug("Opened redis store", "prefix", cfg.RedisPrefix)
		return st, nil
	default:
		return nil, fmt.Errorf("%w: unknown store.driver %q", config.ErrInvalid, cfg.Driver)
	}
}
