package icart

import "context"

// RedisRepository is the slice of the external cart this service touches:
// clearing a user's cart after a successful order creation.
type RedisRepository interface {
	Clear(ctx context.Context, userID int64) error
}
