package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/todoreminder/pkg/config"
)

const (
	minPoolSize = 20
	// poolHeadroom covers the dispatcher, snapshot reads and session traffic
	// running next to a full reconcile fan-out.
	poolHeadroom = 4
)

// RedisClient wraps the redis.Client shared by sessions, snapshots and the
// pending reminder store.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient parses cfg.RedisURL, sizes the pool for the configured
// reconcile concurrency and verifies connectivity within ctx.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	opts.ClientName = cfg.ServiceName
	opts.PoolSize = poolSize(cfg)
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisClient{client: rdb}, nil
}

func poolSize(cfg *config.Config) int {
	return max(minPoolSize, cfg.ReconcileConcurrency+poolHeadroom)
}

// Ping checks the Redis connection health.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (r *RedisClient) Close() error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}

// Client returns the underlying redis.Client.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Wrap adapts an existing redis.Client, e.g. one pointed at a test server.
func Wrap(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}
