package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	credmodel "github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
	completeorder "github.com/dgstore/fulfillment/internal/transport/http/complete_order"
	createorder "github.com/dgstore/fulfillment/internal/transport/http/create_order"
	credentialshandler "github.com/dgstore/fulfillment/internal/transport/http/credentials"
	deleteorder "github.com/dgstore/fulfillment/internal/transport/http/delete_order"
	listorders "github.com/dgstore/fulfillment/internal/transport/http/list_orders"
	setstatus "github.com/dgstore/fulfillment/internal/transport/http/set_status"
	"github.com/dgstore/fulfillment/pkg/http/middleware/auth"
	"github.com/dgstore/fulfillment/pkg/http/middleware/trace"
	"github.com/dgstore/fulfillment/pkg/logger"
)

type orderService interface {
	Create(ctx context.Context, userID int64, items []orderitem.ItemInput) (*order.Order, error)
	List(ctx context.Context, act actor.Actor, query order.Query) ([]order.Order, error)
	SetStatus(ctx context.Context, act actor.Actor, orderID int64, status order.Status) (*order.Order, error)
	Delete(ctx context.Context, act actor.Actor, orderID int64) error
}

type credentialService interface {
	Get(ctx context.Context, act actor.Actor, orderID int64) (*credmodel.Credentials, error)
	Create(ctx context.Context, act actor.Actor, orderID int64, payload credmodel.Payload) (*credmodel.Credentials, error)
	Update(ctx context.Context, act actor.Actor, orderID int64, payload credmodel.Payload) (*credmodel.Credentials, error)
	Delete(ctx context.Context, act actor.Actor, orderID int64) error
}

type fulfillmentService interface {
	CompleteWithCredentials(
		ctx context.Context,
		act actor.Actor,
		orderID int64,
		status order.Status,
		payload credmodel.Payload,
	) (*order.Order, error)
}

type HTTPTransport struct {
	server         *http.Server
	router         *chi.Mux
	orderSvc       orderService
	credentialSvc  credentialService
	fulfillmentSvc fulfillmentService
}

func NewHTTPTransport(orderSvc orderService, credentialSvc credentialService, fulfillmentSvc fulfillmentService) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:         server,
		router:         router,
		orderSvc:       orderSvc,
		credentialSvc:  credentialSvc,
		fulfillmentSvc: fulfillmentSvc,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport. Every route
// runs behind the actor middleware: the identity provider's JWT becomes a
// typed actor on the context, and handlers never re-derive roles.
func (h *HTTPTransport) RegisterRoutes() {
	authMiddleware := auth.NewActorMiddleware(os.Getenv("FULFILLMENT_JWT_SECRET"))

	h.router.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Post("/orders", h.createOrder)
		r.Get("/orders", h.listOrders)

		r.Route("/orders/{orderID}/credentials", func(r chi.Router) {
			r.Get("/", h.getCredentials)
			r.Post("/", h.createCredentials)
			r.Patch("/", h.updateCredentials)
			r.Delete("/", h.deleteCredentials)
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Patch("/{orderID}", h.completeOrder)
			r.Put("/{orderID}/status", h.setStatus)
			r.Delete("/{orderID}", h.deleteOrder)
		})
	})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) getCredentials(w http.ResponseWriter, r *http.Request) {
	credentialshandler.GetCredentials(w, r, h.credentialSvc)
}

func (h *HTTPTransport) createCredentials(w http.ResponseWriter, r *http.Request) {
	credentialshandler.CreateCredentials(w, r, h.credentialSvc)
}

func (h *HTTPTransport) updateCredentials(w http.ResponseWriter, r *http.Request) {
	credentialshandler.UpdateCredentials(w, r, h.credentialSvc)
}

func (h *HTTPTransport) deleteCredentials(w http.ResponseWriter, r *http.Request) {
	credentialshandler.DeleteCredentials(w, r, h.credentialSvc)
}

func (h *HTTPTransport) completeOrder(w http.ResponseWriter, r *http.Request) {
	completeorder.CompleteOrder(w, r, h.fulfillmentSvc)
}

func (h *HTTPTransport) setStatus(w http.ResponseWriter, r *http.Request) {
	setstatus.SetStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) deleteOrder(w http.ResponseWriter, r *http.Request) {
	deleteorder.DeleteOrder(w, r, h.orderSvc)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(trace.NewTraceMiddleware)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
