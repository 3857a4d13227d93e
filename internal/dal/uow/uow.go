package uow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/icredentials"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorder"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorderitem"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/ioutbox"
	"github.com/dgstore/fulfillment/internal/dal/postgres"
	credentialsrepo "github.com/dgstore/fulfillment/internal/dal/repositories/credentials/postgres"
	orderrepo "github.com/dgstore/fulfillment/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/dgstore/fulfillment/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/dgstore/fulfillment/internal/dal/repositories/outbox/postgres"
)

// unitOfWork carries the repositories that must share a transaction: the
// order status write, the credential upsert and the outbox event commit or
// roll back together, so no partial fulfillment state is ever observable.
type unitOfWork struct {
	pool            *pgxpool.Pool
	tx              pgx.Tx
	orderRepo       iorder.PostgresRepository
	orderItemRepo   iorderitem.PostgresRepository
	credentialsRepo icredentials.PostgresRepository
	outboxRepo      ioutbox.PostgresRepository
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	pool := client.Pool()

	return &unitOfWork{
		pool:            pool,
		orderRepo:       orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo:   orderitemrepo.NewPostgresOrderItemRepository(pool),
		credentialsRepo: credentialsrepo.NewPostgresCredentialsRepository(pool),
		outboxRepo:      outboxrepo.NewPostgresOutboxRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorder.PostgresRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitem.PostgresRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) CredentialsRepository() icredentials.PostgresRepository {
	return u.credentialsRepo
}

func (u *unitOfWork) OutboxRepository() ioutbox.PostgresRepository {
	return u.outboxRepo
}

// Begin opens a transaction and rebinds every repository onto it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.credentialsRepo = credentialsrepo.NewPostgresCredentialsRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
