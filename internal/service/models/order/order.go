package order

import (
	"time"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
	"github.com/dgstore/fulfillment/internal/service/models/user"
)

// Order is a customer's purchase request, lifecycle-tracked via status.
// TotalCents is the sum of the item price snapshots captured at creation
// time; it is never recomputed from live catalog prices.
type Order struct {
	ID          int64                    `json:"id"`
	UserID      int64                    `json:"userId"`
	Status      Status                   `json:"status"`
	TotalCents  int64                    `json:"total"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	OrderItems  []orderitem.OrderItem    `json:"items"`
	Credentials *credentials.Credentials `json:"credentials,omitempty"`
	User        *user.User               `json:"user,omitempty"`
}

// CanDisclose is the credential disclosure policy. It must be applied
// everywhere credentials are serialized into a response: admins always see
// them, the owning customer only once the order is COMPLETED, everyone else
// never.
func CanDisclose(o *Order, creds *credentials.Credentials, act actor.Actor) bool {
	if act.IsAdmin() {
		return true
	}

	return act.ID == o.UserID && o.Status == StatusCompleted && creds != nil
}
