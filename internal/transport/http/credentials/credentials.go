package credentialshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	credmodel "github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	Get(ctx context.Context, act actor.Actor, orderID int64) (*credmodel.Credentials, error)
	Create(ctx context.Context, act actor.Actor, orderID int64, payload credmodel.Payload) (*credmodel.Credentials, error)
	Update(ctx context.Context, act actor.Actor, orderID int64, payload credmodel.Payload) (*credmodel.Credentials, error)
	Delete(ctx context.Context, act actor.Actor, orderID int64) error
}

type response struct {
	Credentials *credmodel.Credentials `json:"credentials"`
}

func parseRequest(w http.ResponseWriter, r *http.Request) (actor.Actor, int64, bool) {
	act, ok := actor.FromContext(r.Context())
	if !ok {
		respond.Error(w, actor.ErrUnauthorized)

		return actor.Actor{}, 0, false
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respond.BadRequest(w, "invalid order id")

		return actor.Actor{}, 0, false
	}

	return act, orderID, true
}

func decodePayload(w http.ResponseWriter, r *http.Request) (credmodel.Payload, bool) {
	var payload credmodel.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.BadRequest(w, "invalid json")

		return credmodel.Payload{}, false
	}

	return payload, true
}

// GetCredentials handles GET /orders/{orderID}/credentials.
func GetCredentials(w http.ResponseWriter, r *http.Request, svc service) {
	act, orderID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	creds, err := svc.Get(r.Context(), act, orderID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, response{Credentials: creds})
}

// CreateCredentials handles POST /orders/{orderID}/credentials. Fails with
// 400 when credentials were already provisioned.
func CreateCredentials(w http.ResponseWriter, r *http.Request, svc service) {
	act, orderID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	creds, err := svc.Create(r.Context(), act, orderID, payload)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusCreated, response{Credentials: creds})
}

// UpdateCredentials handles PATCH /orders/{orderID}/credentials. Partial
// update: absent fields survive.
func UpdateCredentials(w http.ResponseWriter, r *http.Request, svc service) {
	act, orderID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	creds, err := svc.Update(r.Context(), act, orderID, payload)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, response{Credentials: creds})
}

// DeleteCredentials handles DELETE /orders/{orderID}/credentials.
func DeleteCredentials(w http.ResponseWriter, r *http.Request, svc service) {
	act, orderID, ok := parseRequest(w, r)
	if !ok {
		return
	}

	if err := svc.Delete(r.Context(), act, orderID); err != nil {
		respond.Error(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
