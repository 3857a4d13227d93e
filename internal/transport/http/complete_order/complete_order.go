package completeorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CompleteWithCredentials(
		ctx context.Context,
		act actor.Actor,
		orderID int64,
		status order.Status,
		payload credentials.Payload,
	) (*order.Order, error)
}

type request struct {
	Status      string              `json:"status"`
	Credentials credentials.Payload `json:"credentials"`
}

// CompleteOrder handles PATCH /admin/orders/{orderID}: the fulfillment
// coordinator's status-plus-credentials transaction.
func CompleteOrder(w http.ResponseWriter, r *http.Request, svc service) {
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

	updated, err := svc.CompleteWithCredentials(r.Context(), act, orderID, status, req.Credentials)
	if err != nil {
		respond.Error(w, err)
		slog.Error("Error completing order", "orderId", orderID, "error", err)

		return
	}

	respond.JSON(w, http.StatusOK, updated)
}
