// Package redis builds the shared Redis client. The broadcaster publishes
// live events through it and the scheduler keeps auction deadlines in it.
package redis

import (
	"context"
	"fmt"
	"time"

	"freight-bid-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from the redis section of the config
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		MaxRetries:   3,
	})
}

// Ping checks the connection, bounded by timeout
func Ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
