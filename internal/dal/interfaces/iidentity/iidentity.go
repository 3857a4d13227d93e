package iidentity

import (
	"context"

	"github.com/dgstore/fulfillment/internal/service/models/user"
)

// PostgresRepository is a read-only view of the external identity store,
// used for the owner display identity on admin listings.
type PostgresRepository interface {
	GetByIds(ctx context.Context, ids []int64) (map[int64]user.User, error)
}
