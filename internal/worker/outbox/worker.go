package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/ioutbox"
	"github.com/dgstore/fulfillment/internal/dal/rabbitmq"
	outboxmodel "github.com/dgstore/fulfillment/internal/service/models/outbox"
)

// Worker drains the outbox table: order lifecycle events committed alongside
// their state change get published to RabbitMQ here, with retry bookkeeping
// on failure.
type Worker struct {
	outboxRepo   ioutbox.PostgresRepository
	rabbitClient *rabbitmq.Client
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new outbox worker and declares the queues it publishes
// to.
func NewWorker(
	outboxRepo ioutbox.PostgresRepository,
	rabbitClient *rabbitmq.Client,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	for _, queue := range []string{outboxmodel.QueueOrderCreated, outboxmodel.QueueOrderStatusChanged} {
		if _, err := rabbitClient.DeclareQueue(rabbitmq.DeclareQueueConfig{
			Name:    queue,
			Durable: true,
		}); err != nil {
			panic("failed to declare queue " + queue + ": " + err.Error())
		}
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		rabbitClient: rabbitClient,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Outbox worker stopped")

			return
		case <-ticker.C:
			w.processMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processMessages retrieves pending messages and publishes them, a few at a
// time.
func (w *Worker) processMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending messages from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox messages", "count", len(messages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, msg := range messages {
		msg := msg
		g.Go(func() error {
			w.publish(ctx, msg)

			return nil
		})
	}

	_ = g.Wait()
}

func (w *Worker) publish(ctx context.Context, msg outboxmodel.Message) {
	err := w.rabbitClient.Channel().Publish(
		msg.ExchangeName,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Payload,
		},
	)

	if err != nil {
		// Exponential backoff: 60s, 120s, 240s, ...
		newRetryCount := msg.RetryCount + 1
		backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30
		nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

		slog.Warn("Failed to publish message from outbox, will retry",
			"outbox_id", msg.ID,
			"retry_count", newRetryCount,
			"next_retry", nextRetryAt,
			"error", err,
		)

		if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, err.Error(), nextRetryAt); err != nil {
			slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
		}

		return
	}

	if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
		slog.Error("Failed to delete message from outbox after successful publish",
			"outbox_id", msg.ID,
			"error", err,
		)

		return
	}

	slog.Info("Message published and removed from outbox", "outbox_id", msg.ID)
}
