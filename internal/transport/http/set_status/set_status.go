package setstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	SetStatus(ctx context.Context, act actor.Actor, orderID int64, status order.Status) (*order.Order, error)
}

type request struct {
	Status string `json:"status"`
}

type response struct {
	Order *order.Order `json:"order"`
}

// SetStatus handles PUT /admin/orders/{orderID}/status: a bare status change
// without touching credentials. Admins that also need to attach credentials
// use the fulfillment endpoint instead.
func SetStatus(w http.ResponseWriter, r *http.Request, svc service) {
	act, ok := actor.FromContext(r.Context())
	if !ok {
		respond.Error(w, actor.ErrUnauthorized)

		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.BadRequest(w, "invalid order id")

		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid json")

		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respond.Error(w, err)

		return
	}

	updated, err := svc.SetStatus(r.Context(), act, orderID, status)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error updating order status", "orderId", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, response{Order: updated})
}
