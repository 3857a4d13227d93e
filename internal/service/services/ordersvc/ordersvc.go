package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/icart"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/icatalog"
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
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
	"github.com/dgstore/fulfillment/internal/service/models/outbox"
	"github.com/dgstore/fulfillment/internal/service/models/product"
)

// OrderService is the order ledger: it owns order creation with price
// snapshotting and the status lifecycle.
type OrderService struct {
	pgClient     *postgres.Client
	catalogRepo  icatalog.PostgresRepository
	identityRepo iidentity.PostgresRepository
	cartRepo     icart.RedisRepository
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

func (s *OrderService) newUOW() unitOfWork {
	if s.uowFactory != nil {
		return s.uowFactory()
	}
	return uow.NewUnitOfWork(s.pgClient)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithCatalogRepository sets the read-only catalog repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogRepository(repo icatalog.PostgresRepository) option {
	return func(s *OrderService) {
		s.catalogRepo = repo
	}
}

// WithIdentityRepository sets the read-only identity repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithIdentityRepository(repo iidentity.PostgresRepository) option {
	return func(s *OrderService) {
		s.identityRepo = repo
	}
}

// WithCartRepository sets the cart repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartRepository(repo icart.RedisRepository) option {
	return func(s *OrderService) {
		s.cartRepo = repo
	}
}

// WithUnitOfWorkFactory overrides transaction construction.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.uowFactory = factory
	}
}

// Create persists a new PENDING order for userID. Every item must reference
// an active catalog product; the unit price snapshot prefers the sale price.
// The order, its items and the order.created outbox event are written in one
// transaction; the user's cart is cleared best-effort after commit.
func (s *OrderService) Create(ctx context.Context, userID int64, items []orderitem.ItemInput) (_ *order.Order, err error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", product.ErrUnavailable)
	}

	productIds := make([]int64, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %d", product.ErrUnavailable, item.ProductID)
		}
		productIds = append(productIds, item.ProductID)
	}

	products, err := s.catalogRepo.FindActive(ctx, productIds)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	now := time.Now()
	o := order.Order{
		UserID:    userID,
		Status:    order.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	orderItems := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", product.ErrUnavailable, item.ProductID)
		}

		unitPrice := p.UnitPriceCents()
		o.TotalCents += unitPrice * int64(item.Quantity)
		orderItems = append(orderItems, orderitem.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: unitPrice,
		})
	}

	work := s.newUOW()
	if err = work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := work.Rollback(ctx); rbErr != nil {
				slog.Error("Rollback failed", "error", rbErr)
			}
		}
	}()

	inserted, err := work.OrderRepository().Insert(ctx, o)
	if err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = inserted.ID
	}
	orderItems, err = work.OrderItemRepository().BulkInsert(ctx, orderItems)
	if err != nil {
		return nil, err
	}
	inserted.OrderItems = orderItems

	msg, err := outbox.NewOrderEvent(outbox.QueueOrderCreated, outbox.EventOrderCreated, outbox.OrderEventPayload{
		OrderID:    inserted.ID,
		UserID:     inserted.UserID,
		Status:     inserted.Status.String(),
		TotalCents: inserted.TotalCents,
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

	// The cart lives in Redis, outside the transaction. A failed clear
	// must not fail the order.
	if s.cartRepo != nil {
		if clearErr := s.cartRepo.Clear(ctx, userID); clearErr != nil {
			slog.Error("Failed to clear cart after order creation", "userId", userID, "orderId", inserted.ID, "error", clearErr)
		}
	}

	return &inserted, nil
}

// List retrieves orders visible to the actor, newest first. Customers see
// only their own orders; admins see everything plus the owner's display
// identity. Credentials are attached only where the disclosure policy
// allows.
func (s *OrderService) List(ctx context.Context, act actor.Actor, query order.Query) ([]order.Order, error) {
	if !act.IsAdmin() {
		query.UserIds = []int64{act.ID}
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &query)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	if err := s.attach(ctx, work, act, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SetStatus updates the status of a single order. Admin-only; transitions
// are unrestricted. The status_changed outbox event shares the transaction.
func (s *OrderService) SetStatus(ctx context.Context, act actor.Actor, orderID int64, status order.Status) (_ *order.Order, err error) {
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

	if _, err = work.OrderRepository().LockByID(ctx, orderID); err != nil {
		return nil, err
	}

	updated, err := work.OrderRepository().UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
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

	orders := []order.Order{*updated}
	if err := s.attach(ctx, s.newUOW(), act, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// Delete removes an order and its items. COMPLETED orders are immutable:
// the customer has received their credentials and the record must survive.
func (s *OrderService) Delete(ctx context.Context, act actor.Actor, orderID int64) (err error) {
	if !act.IsAdmin() {
		return actor.ErrUnauthorized
	}

	work := s.newUOW()
	if err = work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := work.Rollback(ctx); rbErr != nil {
				slog.Error("Rollback failed", "orderId", orderID, "error", rbErr)
			}
		}
	}()

	o, err := work.OrderRepository().LockByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == order.StatusCompleted {
		return order.ErrImmutable
	}

	if err = work.OrderRepository().Delete(ctx, orderID); err != nil {
		return err
	}

	return work.Commit(ctx)
}

// attach loads items, disclosure-gated credentials and, for admins, owner
// identities onto the given orders.
func (s *OrderService) attach(ctx context.Context, work unitOfWork, act actor.Actor, orders []order.Order) error {
	orderIds := make([]int64, 0, len(orders))
	for _, o := range orders {
		orderIds = append(orderIds, o.ID)
	}

	items, err := work.OrderItemRepository().QueryByOrderIds(ctx, orderIds)
	if err != nil {
		return err
	}
	for i := range orders {
		for _, item := range items {
			if item.OrderID == orders[i].ID {
				orders[i].OrderItems = append(orders[i].OrderItems, item)
			}
		}
	}

	creds, err := work.CredentialsRepository().QueryByOrderIds(ctx, orderIds)
	if err != nil {
		return err
	}
	credsByOrder := make(map[int64]*credentials.Credentials, len(creds))
	for i := range creds {
		credsByOrder[creds[i].OrderID] = &creds[i]
	}
	for i := range orders {
		c := credsByOrder[orders[i].ID]
		if c != nil && order.CanDisclose(&orders[i], c, act) {
			orders[i].Credentials = c
		}
	}

	if act.IsAdmin() && s.identityRepo != nil {
		userIds := make([]int64, 0, len(orders))
		for _, o := range orders {
			userIds = append(userIds, o.UserID)
		}
		users, err := s.identityRepo.GetByIds(ctx, userIds)
		if err != nil {
			return err
		}
		for i := range orders {
			if u, ok := users[orders[i].UserID]; ok {
				orders[i].User = &u
			}
		}
	}

	return nil
}
