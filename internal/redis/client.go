package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Order code sequencing. Each calendar day gets its own counter so that
// concurrent first-time creations for the same date cannot compute the
// same sequence number. The counter is seeded from the database count
// the first time a date is seen and then advances atomically via INCR.
func (c *Client) NextOrderSequence(dateKey string, seed int64) (int64, error) {
	ctx := context.Background()
	key := "order_seq:" + dateKey

	if err := c.rdb.SetNX(ctx, key, seed, 72*time.Hour).Err(); err != nil {
		return 0, fmt.Errorf("failed to seed order sequence: %w", err)
	}

	seq, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance order sequence: %w", err)
	}
	return seq, nil
}

// Recent orders cache
func (c *Client) SetRecentOrders(value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal recent orders: %w", err)
	}

	return c.rdb.Set(ctx, "orders:recent", jsonData, ttl).Err()
}

func (c *Client) GetRecentOrders(dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "orders:recent").Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("recent orders not cached")
		}
		return fmt.Errorf("failed to get recent orders: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) InvalidateRecentOrders() error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "orders:recent").Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
