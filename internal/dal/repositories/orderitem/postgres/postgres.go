package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
)

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id         int64
	OrderId    int64
	ProductId  int64
	Quantity   int32
	PriceCents int64
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (i *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:         i.Id,
		OrderID:    i.OrderId,
		ProductID:  i.ProductId,
		Quantity:   int(i.Quantity),
		PriceCents: i.PriceCents,
	}
}

type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts all items in one statement and returns them with ids.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	sql := `
		INSERT INTO order_items (
			order_id,
			product_id,
			quantity,
			price_cents
		)
		SELECT
			order_id,
			product_id,
			quantity,
			price_cents
		FROM unnest($1::bigint[], $2::bigint[], $3::int[], $4::bigint[])
		AS t(order_id, product_id, quantity, price_cents)
		RETURNING
			id,
			order_id,
			product_id,
			quantity,
			price_cents
	`

	orderIds := make([]int64, len(items))
	productIds := make([]int64, len(items))
	quantities := make([]int32, len(items))
	priceCents := make([]int64, len(items))

	for i, item := range items {
		orderIds[i] = item.OrderID
		productIds[i] = item.ProductID
		quantities[i] = int32(item.Quantity)
		priceCents[i] = item.PriceCents
	}

	rows, err := r.conn.Query(ctx, sql, orderIds, productIds, quantities, priceCents)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.PriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// QueryByOrderIds retrieves the items belonging to the given orders.
func (r *PostgresOrderItemRepository) QueryByOrderIds(ctx context.Context, orderIds []int64) ([]orderitem.OrderItem, error) {
	if len(orderIds) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query, args, err := sq.Select("id", "order_id", "product_id", "quantity", "price_cents").
		From("order_items").
		Where(sq.Eq{"order_id": orderIds}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Quantity,
			&dal.PriceCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
