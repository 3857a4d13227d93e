package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/dal/rabbitmq"
	"github.com/dgstore/fulfillment/internal/dal/redis"
	cartrepo "github.com/dgstore/fulfillment/internal/dal/repositories/cart/redis"
	catalogrepo "github.com/dgstore/fulfillment/internal/dal/repositories/catalog/postgres"
	identityrepo "github.com/dgstore/fulfillment/internal/dal/repositories/identity/postgres"
	outboxrepo "github.com/dgstore/fulfillment/internal/dal/repositories/outbox/postgres"
	"github.com/dgstore/fulfillment/internal/otel"
	"github.com/dgstore/fulfillment/internal/service/services/credentialsvc"
	"github.com/dgstore/fulfillment/internal/service/services/fulfillmentsvc"
	"github.com/dgstore/fulfillment/internal/service/services/ordersvc"
	httptransport "github.com/dgstore/fulfillment/internal/transport/http"
	outboxworker "github.com/dgstore/fulfillment/internal/worker/outbox"
)

// App represents the application.
type App struct {
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	postgresClient *postgres.Client
	redisClient    *redis.Client
	rabbitClient   *rabbitmq.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()

	postgresClient := postgres.MustNewClient()
	redisClient := redis.MustNewClient()
	rabbitClient := rabbitmq.MustNewClient()

	catalogRepo := catalogrepo.NewPostgresCatalogRepository(postgresClient.Pool())
	identityRepo := identityrepo.NewPostgresIdentityRepository(postgresClient.Pool())
	cartRepo := cartrepo.NewRedisCartRepository(redisClient)
	outboxRepo := outboxrepo.NewPostgresOutboxRepository(postgresClient.Pool())

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithCatalogRepository(catalogRepo),
		ordersvc.WithIdentityRepository(identityRepo),
		ordersvc.WithCartRepository(cartRepo),
	)
	credentialSvc := credentialsvc.MustNewCredentialService(
		credentialsvc.WithPostgresClient(postgresClient),
	)
	fulfillmentSvc := fulfillmentsvc.MustNewFulfillmentService(
		fulfillmentsvc.WithPostgresClient(postgresClient),
		fulfillmentsvc.WithIdentityRepository(identityRepo),
	)

	transport := httptransport.NewHTTPTransport(orderSvc, credentialSvc, fulfillmentSvc)
	transport.RegisterRoutes()

	worker := outboxworker.NewWorker(outboxRepo, rabbitClient)

	return &App{
		transport:      transport,
		outboxWorker:   worker,
		postgresClient: postgresClient,
		redisClient:    redisClient,
		rabbitClient:   rabbitClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.outboxWorker.Start(workerCtx)

	go func() {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	cancelWorker()

	if err := a.rabbitClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(); err != nil {
		slog.Error("Tracer shutdown error", "error", err)
	}

	slog.Info("Application shutdown complete")
}
