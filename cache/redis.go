// Package cache holds organizer dashboard metrics in Redis between purchases.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phillip/nft-ticketing-go/models"
)

const keyPrefix = "metrics:organizer:"

// NewRedisClient parses url as a redis:// URL, falling back to a bare
// host:port address, and pings the server once.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	slog.Info("connected to redis", "addr", opts.Addr)
	return client, nil
}

// HealthCheck pings Redis with a short deadline.
func HealthCheck(ctx context.Context, client redis.Cmdable) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// MetricsCache stores one JSON document per organizer.
type MetricsCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewMetricsCache(rdb redis.Cmdable, ttl time.Duration) *MetricsCache {
	return &MetricsCache{rdb: rdb, ttl: ttl}
}

func Key(organizerID string) string {
	return keyPrefix + organizerID
}

func (c *MetricsCache) Get(ctx context.Context, organizerID string) (*models.DashboardMetrics, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(organizerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached metrics: %w", err)
	}

	var m models.DashboardMetrics
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false, fmt.Errorf("decode cached metrics: %w", err)
	}
	return &m, true, nil
}

func (c *MetricsCache) Set(ctx context.Context, organizerID string, m *models.DashboardMetrics) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return c.rdb.Set(ctx, Key(organizerID), raw, c.ttl).Err()
}

func (c *MetricsCache) Invalidate(ctx context.Context, organizerID string) error {
	return c.rdb.Del(ctx, Key(organizerID)).Err()
}
