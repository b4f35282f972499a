// Package redis provides an optional shared cache for mid prices so multiple
// tracker replicas do not each hammer the info endpoint.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alxparaschiv/All-Whale-Tracker-Bot/internal/metrics"
)

const midsKey = "whaletracker:mids"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(url string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// GetMids returns the cached mid-price map, or (nil, false, nil) on a miss.
func (c *Cache) GetMids(ctx context.Context) (map[string]float64, bool, error) {
	raw, err := c.client.Get(ctx, midsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues("redis_mids").Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get mids: %w", err)
	}

	var mids map[string]float64
	if err := json.Unmarshal(raw, &mids); err != nil {
		return nil, false, fmt.Errorf("unmarshal mids: %w", err)
	}
	metrics.CacheHits.WithLabelValues("redis_mids").Inc()
	return mids, true, nil
}

// SetMids stores the mid-price map with the configured TTL.
func (c *Cache) SetMids(ctx context.Context, mids map[string]float64) error {
	raw, err := json.Marshal(mids)
	if err != nil {
		return fmt.Errorf("marshal mids: %w", err)
	}
	if err := c.client.Set(ctx, midsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set mids: %w", err)
	}
	return nil
}
