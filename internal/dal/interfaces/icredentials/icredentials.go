package icredentials

import (
	"context"

	"github.com/dgstore/fulfillment/internal/service/models/credentials"
)

// PostgresRepository is an interface for the credentials postgres repository.
// GetByOrderID, UpdateFields and DeleteByOrderID return credentials.ErrNotFound
// when no row exists for the order.
type PostgresRepository interface {
	GetByOrderID(ctx context.Context, orderID int64) (*credentials.Credentials, error)
	QueryByOrderIds(ctx context.Context, orderIds []int64) ([]credentials.Credentials, error)
	Insert(ctx context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error)
	UpdateFields(ctx context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
}
