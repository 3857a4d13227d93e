package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	QueueOrderCreated       = "fulfillment.order.created"
	QueueOrderStatusChanged = "fulfillment.order.status_changed"

	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"

	defaultMaxRetries = 5
)

// Envelope is the wire shape of every outbox event.
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// OrderEventPayload describes the order a lifecycle event refers to.
type OrderEventPayload struct {
	OrderID    int64  `json:"orderId"`
	UserID     int64  `json:"userId"`
	Status     string `json:"status"`
	TotalCents int64  `json:"totalCents"`
}

// NewOrderEvent builds an outbox message for the given queue, publishing via
// the default exchange so the routing key is the queue name.
func NewOrderEvent(queue, eventType string, payload OrderEventPayload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	body, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		return Message{}, err
	}

	now := time.Now()

	return Message{
		QueueName:   queue,
		RoutingKey:  queue,
		Payload:     body,
		ContentType: "application/json",
		MaxRetries:  defaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}, nil
}
