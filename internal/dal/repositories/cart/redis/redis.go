package redisrepo

import (
	"context"
	"fmt"

	redisclient "github.com/dgstore/fulfillment/internal/dal/redis"
)

const keyCart = "cart:%d"

// RedisCartRepository touches the checkout cart kept in Redis. Order
// creation clears it on success; nothing here is transactional with
// Postgres, callers treat failures as non-fatal.
type RedisCartRepository struct {
	client *redisclient.Client
}

func NewRedisCartRepository(client *redisclient.Client) *RedisCartRepository {
	return &RedisCartRepository{
		client: client,
	}
}

// Clear drops the user's cart.
func (r *RedisCartRepository) Clear(ctx context.Context, userID int64) error {
	if err := r.client.RDB().Del(ctx, fmt.Sprintf(keyCart, userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart for user %d: %w", userID, err)
	}

	return nil
}
