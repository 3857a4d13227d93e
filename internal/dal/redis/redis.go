package redis

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client. The cart lives here; this service only
// ever clears it.
type Client struct {
	rdb *redis.Client
}

// RDB returns the underlying go-redis client.
func (c *Client) RDB() *redis.Client {
	return c.rdb
}

// Close closes the connection for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MustNewClient creates a new Redis client.
func MustNewClient() *Client {
	addr := os.Getenv("FULFILLMENT_REDIS_ADDR")
	if addr == "" {
		addr = "redis:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("FULFILLMENT_REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		panic("failed to connect to Redis: " + err.Error())
	}

	return &Client{rdb: rdb}
}
