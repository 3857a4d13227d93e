package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/product"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

// Error maps the service error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is a storage-layer failure: the detail goes to the log, the
// customer gets a generic body.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, actor.ErrUnauthorized):
		JSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, product.ErrUnavailable):
		JSON(w, http.StatusNotFound, errorBody{Error: "product unavailable"})
	case errors.Is(err, order.ErrNotFound):
		JSON(w, http.StatusNotFound, errorBody{Error: "order not found"})
	case errors.Is(err, credentials.ErrNotFound):
		JSON(w, http.StatusNotFound, errorBody{Error: "credentials not found"})
	case errors.Is(err, credentials.ErrAlreadyExists):
		JSON(w, http.StatusBadRequest, errorBody{Error: "credentials already exist"})
	case errors.Is(err, order.ErrImmutable):
		JSON(w, http.StatusConflict, errorBody{Error: "completed orders cannot be deleted"})
	case errors.Is(err, order.ErrInvalidStatus):
		JSON(w, http.StatusBadRequest, errorBody{Error: "invalid status"})
	default:
		slog.Error("Internal error", "error", err)
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// BadRequest writes a 400 with the given code.
func BadRequest(w http.ResponseWriter, code string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: code})
}
