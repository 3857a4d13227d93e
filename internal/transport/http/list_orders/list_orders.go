package listorders

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	List(ctx context.Context, act actor.Actor, query order.Query) ([]order.Order, error)
}

type response struct {
	Orders []order.Order `json:"orders"`
}

// parseIntSlice parses a comma-separated string into int64s, skipping junk.
func parseIntSlice(s string) []int64 {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]int64, 0, len(parts))
	for _, part := range parts {
		if val, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			result = append(result, val)
		}
	}

	return result
}

// ListOrders handles GET /orders and GET /admin/orders. The actor decides
// the scope: customers get their own orders, admins get everything with the
// owner identity attached. Credential visibility follows the disclosure
// policy inside the service.
func ListOrders(w http.ResponseWriter, r *http.Request, svc service) {
	act, ok := actor.FromContext(r.Context())
	if !ok {
		respond.Error(w, actor.ErrUnauthorized)

		return
	}

	query := r.URL.Query()
	q := order.Query{
		Ids: parseIntSlice(query.Get("ids")),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			q.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			q.Offset = offset
		}
	}

	orders, err := svc.List(r.Context(), act, q)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, response{Orders: orders})
}
