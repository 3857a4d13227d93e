package ioutbox

import (
	"context"
	"time"

	"github.com/dgstore/fulfillment/internal/service/models/outbox"
)

// PostgresRepository is an interface for the outbox postgres repository.
type PostgresRepository interface {
	Insert(ctx context.Context, msg outbox.Message) error
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.Message, error)
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
	Delete(ctx context.Context, id int64) error
}
