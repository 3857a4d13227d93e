package credentialsvc

import (
	"context"
	"errors"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/icredentials"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorder"
	"github.com/dgstore/fulfillment/internal/dal/postgres"
	credentialsrepo "github.com/dgstore/fulfillment/internal/dal/repositories/credentials/postgres"
	orderrepo "github.com/dgstore/fulfillment/internal/dal/repositories/order/postgres"
	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
)

// CredentialService is the credential vault: it owns the secret payload an
// admin provisions for an order and gates every read through the disclosure
// policy. Writes here never touch the order status; the coordinated
// status-plus-credentials path lives in fulfillmentsvc.
type CredentialService struct {
	orderRepo iorder.PostgresRepository
	credRepo  icredentials.PostgresRepository
}

// option is a function that configures the CredentialService.
type option func(*CredentialService)

// MustNewCredentialService creates a new CredentialService.
func MustNewCredentialService(opts ...option) *CredentialService {
	s := &CredentialService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient builds the pool-backed repositories.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CredentialService) {
		s.orderRepo = orderrepo.NewPostgresOrderRepository(pgClient.Pool())
		s.credRepo = credentialsrepo.NewPostgresCredentialsRepository(pgClient.Pool())
	}
}

// WithRepositories injects repositories directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepositories(orderRepo iorder.PostgresRepository, credRepo icredentials.PostgresRepository) option {
	return func(s *CredentialService) {
		s.orderRepo = orderRepo
		s.credRepo = credRepo
	}
}

// Get returns the credentials for an order, applying the disclosure policy:
// admins always, the owner only once the order is COMPLETED, nobody else.
// A pre-completion owner gets credentials.ErrNotFound even when a row
// exists, so existence is never leaked.
func (s *CredentialService) Get(ctx context.Context, act actor.Actor, orderID int64) (*credentials.Credentials, error) {
	o, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !act.IsAdmin() {
		if act.ID != o.UserID {
			return nil, actor.ErrUnauthorized
		}
		if o.Status != order.StatusCompleted {
			return nil, credentials.ErrNotFound
		}
	}

	return s.credRepo.GetByOrderID(ctx, orderID)
}

// Create provisions the credentials row for an order. Fails with
// credentials.ErrAlreadyExists when one is present; callers should use the
// update path instead.
func (s *CredentialService) Create(ctx context.Context, act actor.Actor, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if !act.IsAdmin() {
		return nil, actor.ErrUnauthorized
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	existing, err := s.credRepo.GetByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, credentials.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, credentials.ErrAlreadyExists
	}

	return s.credRepo.Insert(ctx, orderID, payload)
}

// Update applies a partial update to existing credentials: fields absent
// from the payload survive untouched. Fails with credentials.ErrNotFound
// when none were provisioned yet.
func (s *CredentialService) Update(ctx context.Context, act actor.Actor, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if !act.IsAdmin() {
		return nil, actor.ErrUnauthorized
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	return s.credRepo.UpdateFields(ctx, orderID, payload)
}

// Upsert creates or partially updates the credentials for an order. It has
// no effect on the order status.
func (s *CredentialService) Upsert(ctx context.Context, act actor.Actor, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if !act.IsAdmin() {
		return nil, actor.ErrUnauthorized
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	updated, err := s.credRepo.UpdateFields(ctx, orderID, payload)
	if errors.Is(err, credentials.ErrNotFound) {
		return s.credRepo.Insert(ctx, orderID, payload)
	}

	return updated, err
}

// Delete removes the credentials row. The order and its status are
// untouched.
func (s *CredentialService) Delete(ctx context.Context, act actor.Actor, orderID int64) error {
	if !act.IsAdmin() {
		return actor.ErrUnauthorized
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return err
	}

	return s.credRepo.DeleteByOrderID(ctx, orderID)
}
