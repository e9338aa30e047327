// Package kvstore is the durable key-value primitive behind dashboard layouts.
// Writes are last-write-wins; there are no transactions.
package kvstore

import (
	"context"
	"fmt"

	"go-hse/internal/config"
	"go-hse/internal/database"

	"github.com/redis/go-redis/v9"
)

type Store interface {
	// Get returns found=false when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// NewStore selects a driver from KV_DRIVER. The redis and sql handles are nil unless
// their driver is selected.
func NewStore(cfg *config.Config, mongodb *database.MongodbDB, rdb *redis.Client, sdb *database.SQLDB) (Store, error) {
	switch cfg.KVDriver {
	case "", "mongo":
		return NewMongoStore(mongodb), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis client not configured")
		}
		return NewRedisStore(rdb), nil
	case "postgres", "mysql", "sqlite":
		if sdb == nil {
			return nil, fmt.Errorf("%s connection not configured", cfg.KVDriver)
		}
		return NewSQLStore(context.Background(), sdb)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown KV_DRIVER %q", cfg.KVDriver)
	}
}
