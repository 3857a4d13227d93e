package fulfillmentsvc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/icredentials"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iidentity"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorder"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorderitem"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/ioutbox"
	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/dal/uow"
	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/outbox"
)

// FulfillmentService coordinates the one operation that must be atomic: an
// admin moving an order through its lifecycle while attaching or amending
// the credentials the customer will receive. Status write, credential upsert
// and outbox event share a single transaction; a failure anywhere leaves all
// three untouched.
type FulfillmentService struct {
	pgClient     *postgres.Client
	identityRepo iidentity.PostgresRepository
	uowFactory   func() unitOfWork
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorder.PostgresRepository
	OrderItemRepository() iorderitem.PostgresRepository
	CredentialsRepository() icredentials.PostgresRepository
	OutboxRepository() ioutbox.PostgresRepository
}

func (s *FulfillmentService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}
	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the FulfillmentService.
type option func(*FulfillmentService)

// MustNewFulfillmentService creates a new FulfillmentService.
func MustNewFulfillmentService(opts ...option) *FulfillmentService {
	s := &FulfillmentService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *FulfillmentService) {
		s.pgClient = pgClient
	}
}

// WithIdentityRepository sets the read-only identity repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdentityRepository(repo iidentity.PostgresRepository) option {
	return func(s *FulfillmentService) {
		s.identityRepo = repo
	}
}

// WithUnitOfWorkFactory overrides transaction construction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *FulfillmentService) {
		s.uowFactory = factory
	}
}

// CompleteWithCredentials updates the order status and, when the payload
// carries at least one field, upserts the credentials in one transaction.
// Safe to repeat with the same status; each call with a non-empty payload
// performs a fresh partial update. Returns the order joined with its
// credentials, items and owner identity for the admin view.
func (s *FulfillmentService) CompleteWithCredentials(
	ctx context.Context,
	act actor.Actor,
	orderID int64,
	status order.Status,
	payload credentials.Payload,
) (_ *order.Order, err error) {
	if !act.IsAdmin() {
		return nil, actor.ErrUnauthorized
	}

	work := s.newUOW()
	if err = work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := work.Rollback(ctx); rbErr != nil {
				slog.Error("Rollback failed", "orderId", orderID, "error", rbErr)
			}
		}
	}()

	// Lock the row so concurrent fulfillment calls on the same order
	// serialize instead of interleaving status and credential writes.
	if _, err = work.OrderRepository().LockByID(ctx, orderID); err != nil {
		return nil, err
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	if !payload.Empty() {
		if _, err = upsert(ctx, work.CredentialsRepository(), orderID, payload); err != nil {
			return nil, err
		}
	}

	msg, err := outbox.NewOrderEvent(outbox.QueueOrderStatusChanged, outbox.EventOrderStatusChanged, outbox.OrderEventPayload{
		OrderID:    updated.ID,
		UserID:     updated.UserID,
		Status:     updated.Status.String(),
		TotalCents: updated.TotalCents,
	})
	if err != nil {
		return nil, err
	}
	if err = work.OutboxRepository().Insert(ctx, msg); err != nil {
		return nil, err
	}

	if err = work.Commit(ctx); err != nil {
		return nil, err
	}

	return s.reload(ctx, orderID)
}

func upsert(ctx context.Context, repo icredentials.PostgresRepository, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	updated, err := repo.UpdateFields(ctx, orderID, payload)
	if errors.Is(err, credentials.ErrNotFound) {
		return repo.Insert(ctx, orderID, payload)
	}

	return updated, err
}

// reload reads the committed order back with credentials, items and owner
// identity attached.
func (s *FulfillmentService) reload(ctx context.Context, orderID int64) (*order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := work.OrderItemRepository().QueryByOrderIds(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items

	creds, err := work.CredentialsRepository().GetByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return nil, err
	}
	o.Credentials = creds

	if s.identityRepo != nil {
		users, err := s.identityRepo.GetByIds(ctx, []int64{o.UserID})
		if err != nil {
			return nil, err
		}
		if u, ok := users[o.UserID]; ok {
			o.User = &u
		}
	}

	return o, nil
}
