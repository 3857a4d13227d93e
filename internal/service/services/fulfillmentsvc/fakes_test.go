package fulfillmentsvc

import (
	"context"
	"errors"
	"time"

	"github.com/dgstore/fulfillment/internal/dal/interfaces/icredentials"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorder"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/iorderitem"
	"github.com/dgstore/fulfillment/internal/dal/interfaces/ioutbox"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
	outboxmodel "github.com/dgstore/fulfillment/internal/service/models/outbox"
	"github.com/dgstore/fulfillment/internal/service/models/user"
)

// fakeStore is the in-memory stand-in for Postgres shared by the fake
// repositories. Begin snapshots it, Rollback restores the snapshot, so the
// tests can observe real all-or-nothing semantics.
type fakeStore struct {
	orders   map[int64]order.Order
	items    map[int64][]orderitem.OrderItem
	creds    map[int64]credentials.Credentials
	outbox   []outboxmodel.Message
	nextCred int64
	saved    *fakeStore

	failCredsUpdate  bool
	failOutboxInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: map[int64]order.Order{},
		items:  map[int64][]orderitem.OrderItem{},
		creds:  map[int64]credentials.Credentials{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]orderitem.OrderItem(nil), v...)
	}
	for k, v := range s.creds {
		c.creds[k] = v
	}
	c.outbox = append([]outboxmodel.Message(nil), s.outbox...)
	c.nextCred = s.nextCred
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.orders = from.orders
	s.items = from.items
	s.creds = from.creds
	s.outbox = from.outbox
	s.nextCred = from.nextCred
}

type fakeUOW struct {
	store *fakeStore
}

func (u *fakeUOW) Begin(context.Context) error {
	u.store.saved = u.store.clone()
	return nil
}

func (u *fakeUOW) Commit(context.Context) error {
	u.store.saved = nil
	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	if u.store.saved != nil {
		u.store.restore(u.store.saved)
		u.store.saved = nil
	}
	return nil
}

func (u *fakeUOW) OrderRepository() iorder.PostgresRepository {
	return &fakeOrderRepo{store: u.store}
}

func (u *fakeUOW) OrderItemRepository() iorderitem.PostgresRepository {
	return &fakeOrderItemRepo{store: u.store}
}

func (u *fakeUOW) CredentialsRepository() icredentials.PostgresRepository {
	return &fakeCredentialsRepo{store: u.store}
}

func (u *fakeUOW) OutboxRepository() ioutbox.PostgresRepository {
	return &fakeOutboxRepo{store: u.store}
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.store.orders[o.ID] = o
	return o, nil
}

func (r *fakeOrderRepo) Query(_ context.Context, filter *order.Query) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.store.orders {
		result = append(result, o)
	}
	return result, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) LockByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.store.orders[id] = o
	return &o, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.orders[id]; !ok {
		return order.ErrNotFound
	}
	delete(r.store.orders, id)
	delete(r.store.items, id)
	return nil
}

type fakeOrderItemRepo struct {
	store *fakeStore
}

func (r *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	for _, item := range items {
		r.store.items[item.OrderID] = append(r.store.items[item.OrderID], item)
	}
	return items, nil
}

func (r *fakeOrderItemRepo) QueryByOrderIds(_ context.Context, orderIds []int64) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, id := range orderIds {
		result = append(result, r.store.items[id]...)
	}
	return result, nil
}

type fakeCredentialsRepo struct {
	store *fakeStore
}

func (r *fakeCredentialsRepo) GetByOrderID(_ context.Context, orderID int64) (*credentials.Credentials, error) {
	c, ok := r.store.creds[orderID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCredentialsRepo) QueryByOrderIds(_ context.Context, orderIds []int64) ([]credentials.Credentials, error) {
	var result []credentials.Credentials
	for _, id := range orderIds {
		if c, ok := r.store.creds[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeCredentialsRepo) Insert(_ context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if _, ok := r.store.creds[orderID]; ok {
		return nil, errors.New("unique violation: credentials.order_id")
	}
	r.store.nextCred++
	now := time.Now()
	c := credentials.Credentials{ID: r.store.nextCred, OrderID: orderID, CreatedAt: now, UpdatedAt: now}
	payload.Apply(&c)
	r.store.creds[orderID] = c
	return &c, nil
}

func (r *fakeCredentialsRepo) UpdateFields(_ context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if r.store.failCredsUpdate {
		return nil, errors.New("storage failure")
	}
	c, ok := r.store.creds[orderID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	payload.Apply(&c)
	c.UpdatedAt = time.Now()
	r.store.creds[orderID] = c
	return &c, nil
}

func (r *fakeCredentialsRepo) DeleteByOrderID(_ context.Context, orderID int64) error {
	if _, ok := r.store.creds[orderID]; !ok {
		return credentials.ErrNotFound
	}
	delete(r.store.creds, orderID)
	return nil
}

type fakeOutboxRepo struct {
	store *fakeStore
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outboxmodel.Message) error {
	if r.store.failOutboxInsert {
		return errors.New("storage failure")
	}
	msg.ID = int64(len(r.store.outbox) + 1)
	r.store.outbox = append(r.store.outbox, msg)
	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outboxmodel.Message, error) {
	return append([]outboxmodel.Message(nil), r.store.outbox...), nil
}

func (r *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) Delete(context.Context, int64) error {
	return nil
}

type fakeIdentityRepo struct {
	users map[int64]user.User
}

func (r *fakeIdentityRepo) GetByIds(_ context.Context, ids []int64) (map[int64]user.User, error) {
	result := map[int64]user.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			result[id] = u
		}
	}
	return result, nil
}

func strPtr(s string) *string { return &s }
