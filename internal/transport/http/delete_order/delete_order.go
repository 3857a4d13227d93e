package deleteorder

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	Delete(ctx context.Context, act actor.Actor, orderID int64) error
}

// DeleteOrder handles DELETE /admin/orders/{orderID}. COMPLETED orders are
// refused with 409.
func DeleteOrder(w http.ResponseWriter, r *http.Request, svc service) {
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

	if err := svc.Delete(r.Context(), act, orderID); err != nil {
		respond.Error(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
