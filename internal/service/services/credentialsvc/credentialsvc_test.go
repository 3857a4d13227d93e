package credentialsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
	"github.com/dgstore/fulfillment/internal/service/models/order"
)

var (
	admin    = actor.Actor{ID: 1, Role: actor.RoleAdmin}
	owner    = actor.Actor{ID: 7, Role: actor.RoleUser}
	stranger = actor.Actor{ID: 8, Role: actor.RoleUser}
)

type fakeOrderRepo struct {
	orders map[int64]order.Order
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.orders[o.ID] = o
	return o, nil
}

func (r *fakeOrderRepo) Query(context.Context, *order.Query) ([]order.Order, error) {
	return nil, errors.New("not used")
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) LockByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = status
	r.orders[id] = o
	return &o, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id int64) error {
	delete(r.orders, id)
	return nil
}

type fakeCredRepo struct {
	creds    map[int64]credentials.Credentials
	nextCred int64
}

func (r *fakeCredRepo) GetByOrderID(_ context.Context, orderID int64) (*credentials.Credentials, error) {
	c, ok := r.creds[orderID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	return &c, nil
}

func (r *fakeCredRepo) QueryByOrderIds(_ context.Context, orderIds []int64) ([]credentials.Credentials, error) {
	var result []credentials.Credentials
	for _, id := range orderIds {
		if c, ok := r.creds[id]; ok {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *fakeCredRepo) Insert(_ context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	if _, ok := r.creds[orderID]; ok {
		return nil, errors.New("unique violation: credentials.order_id")
	}
	r.nextCred++
	now := time.Now()
	c := credentials.Credentials{ID: r.nextCred, OrderID: orderID, CreatedAt: now, UpdatedAt: now}
	payload.Apply(&c)
	r.creds[orderID] = c
	return &c, nil
}

func (r *fakeCredRepo) UpdateFields(_ context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	c, ok := r.creds[orderID]
	if !ok {
		return nil, credentials.ErrNotFound
	}
	payload.Apply(&c)
	c.UpdatedAt = time.Now()
	r.creds[orderID] = c
	return &c, nil
}

func (r *fakeCredRepo) DeleteByOrderID(_ context.Context, orderID int64) error {
	if _, ok := r.creds[orderID]; !ok {
		return credentials.ErrNotFound
	}
	delete(r.creds, orderID)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(status order.Status, withCreds bool) (*CredentialService, *fakeOrderRepo, *fakeCredRepo) {
	orders := &fakeOrderRepo{orders: map[int64]order.Order{
		10: {ID: 10, UserID: owner.ID, Status: status, TotalCents: 1600},
	}}
	creds := &fakeCredRepo{creds: map[int64]credentials.Credentials{}}
	if withCreds {
		creds.creds[10] = credentials.Credentials{
			ID: 1, OrderID: 10,
			Email:    strPtr("acct@vendor.com"),
			Password: strPtr("s3cret"),
		}
		creds.nextCred = 1
	}
	svc := MustNewCredentialService(WithRepositories(orders, creds))
	return svc, orders, creds
}

func TestGet_OwnerBlockedBeforeCompletion(t *testing.T) {
	for _, status := range []order.Status{order.StatusPending, order.StatusProcessing, order.StatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			svc, _, _ := newTestService(status, true)

			_, err := svc.Get(context.Background(), owner, 10)
			assert.ErrorIs(t, err, credentials.ErrNotFound, "existing row must not leak before completion")
		})
	}
}

func TestGet_OwnerSeesCompletedOrder(t *testing.T) {
	svc, _, _ := newTestService(order.StatusCompleted, true)

	got, err := svc.Get(context.Background(), owner, 10)
	require.NoError(t, err)
	assert.Equal(t, "acct@vendor.com", *got.Email)
	assert.Equal(t, "s3cret", *got.Password)
}

func TestGet_AdminSeesAnyStatus(t *testing.T) {
	svc, _, _ := newTestService(order.StatusPending, true)

	got, err := svc.Get(context.Background(), admin, 10)
	require.NoError(t, err)
	assert.Equal(t, "acct@vendor.com", *got.Email)
}

func TestGet_StrangerUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(order.StatusCompleted, true)

	_, err := svc.Get(context.Background(), stranger, 10)
	assert.ErrorIs(t, err, actor.ErrUnauthorized)
}

func TestGet_CompletedWithoutRow(t *testing.T) {
	svc, _, _ := newTestService(order.StatusCompleted, false)

	_, err := svc.Get(context.Background(), owner, 10)
	assert.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestGet_OrderNotFound(t *testing.T) {
	svc, _, _ := newTestService(order.StatusCompleted, true)

	_, err := svc.Get(context.Background(), admin, 404)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCreate_ProvisionsRow(t *testing.T) {
	svc, _, creds := newTestService(order.StatusPending, false)

	got, err := svc.Create(context.Background(), admin, 10, credentials.Payload{
		Email:    strPtr("acct@vendor.com"),
		Password: strPtr("s3cret"),
		Details:  strPtr("activation code: XYZ"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.OrderID)
	assert.Len(t, creds.creds, 1)
}

func TestCreate_DuplicateRejected(t *testing.T) {
	svc, _, _ := newTestService(order.StatusPending, true)

	_, err := svc.Create(context.Background(), admin, 10, credentials.Payload{Email: strPtr("x@y.com")})
	assert.ErrorIs(t, err, credentials.ErrAlreadyExists)
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _, creds := newTestService(order.StatusCompleted, false)

	_, err := svc.Create(context.Background(), owner, 10, credentials.Payload{Email: strPtr("x@y.com")})
	assert.ErrorIs(t, err, actor.ErrUnauthorized)
	assert.Empty(t, creds.creds)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, _ := newTestService(order.StatusProcessing, true)

	got, err := svc.Update(context.Background(), admin, 10, credentials.Payload{Password: strPtr("rotated")})
	require.NoError(t, err)
	assert.Equal(t, "acct@vendor.com", *got.Email, "absent fields survive")
	assert.Equal(t, "rotated", *got.Password)
}

func TestUpdate_MissingRow(t *testing.T) {
	svc, _, _ := newTestService(order.StatusProcessing, false)

	_, err := svc.Update(context.Background(), admin, 10, credentials.Payload{Password: strPtr("x")})
	assert.ErrorIs(t, err, credentials.ErrNotFound)
}

func TestUpsert_InsertsThenUpdates(t *testing.T) {
	svc, _, creds := newTestService(order.StatusPending, false)

	first, err := svc.Upsert(context.Background(), admin, 10, credentials.Payload{Email: strPtr("a@b.com")})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", *first.Email)

	second, err := svc.Upsert(context.Background(), admin, 10, credentials.Payload{Password: strPtr("pw")})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", *second.Email)
	assert.Equal(t, "pw", *second.Password)
	assert.Len(t, creds.creds, 1)
}

func TestDelete_RemovesRowWithoutTouchingOrder(t *testing.T) {
	svc, orders, creds := newTestService(order.StatusCompleted, true)

	require.NoError(t, svc.Delete(context.Background(), admin, 10))
	assert.Empty(t, creds.creds)
	assert.Equal(t, order.StatusCompleted, orders.orders[10].Status)

	err := svc.Delete(context.Background(), admin, 10)
	assert.ErrorIs(t, err, credentials.ErrNotFound)
}
