package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-hse/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewRedisClient connects to Redis when the layout store runs on the redis driver.
// It returns a nil client for every other driver.
func NewRedisClient(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	if cfg.KVDriver != "redis" {
		return nil, nil
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when KV_DRIVER=redis")
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("Connected to Redis!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
