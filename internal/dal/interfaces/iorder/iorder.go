package iorder

import (
	"context"

	"github.com/dgstore/fulfillment/internal/service/models/order"
)

// PostgresRepository is an interface for the order postgres repository.
type PostgresRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.Query) ([]order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	// LockByID loads the order with FOR UPDATE; only meaningful inside a
	// transaction.
	LockByID(ctx context.Context, id int64) (*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
	Delete(ctx context.Context, id int64) error
}
