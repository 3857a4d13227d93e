package createorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	Create(ctx context.Context, userID int64, items []orderitem.ItemInput) (*order.Order, error)
}

type request struct {
	Items []orderitem.ItemInput `json:"items"`
}

type response struct {
	Order *order.Order `json:"order"`
}

// CreateOrder handles POST /orders: a checkout creating a PENDING order for
// the authenticated customer.
func CreateOrder(w http.ResponseWriter, r *http.Request, svc service) {
	act, ok := actor.FromContext(r.Context())
	if !ok {
		respond.Error(w, actor.ErrUnauthorized)

		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid json")
		slog.Error("Error decoding request body for create order", "error", err)

		return
	}
	if len(req.Items) == 0 {
		respond.BadRequest(w, "items must not be empty")

		return
	}

	created, err := svc.Create(r.Context(), act.ID, req.Items)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error creating order", "userId", act.ID, "error", err)

		return
	}

	respond.JSON(w, http.StatusCreated, response{Order: created})
}
