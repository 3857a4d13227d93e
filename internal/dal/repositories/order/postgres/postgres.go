package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/service/models/order"
	"github.com/dgstore/fulfillment/internal/service/models/orderitem"
)

var orderColumns = []string{
	"id",
	"user_id",
	"status",
	"total_cents",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id         int64
	UserId     int64
	Status     string
	TotalCents int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	st, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:         o.Id,
		UserID:     o.UserId,
		Status:     st,
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		OrderItems: []orderitem.OrderItem{}, // populated separately
	}, nil
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

func (r *PostgresOrderRepository) scanOne(row pgx.Row) (*order.Order, error) {
	var dal OrderDal
	err := row.Scan(
		&dal.Id,
		&dal.UserId,
		&dal.Status,
		&dal.TotalCents,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	return dal.ToModel()
}

// Insert persists a new order and returns it with its generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := sq.Insert("orders").
		Columns("user_id", "status", "total_cents", "created_at", "updated_at").
		Values(o.UserID, o.Status.String(), o.TotalCents, o.CreatedAt, o.UpdatedAt).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := r.scanOne(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	inserted.OrderItems = append(inserted.OrderItems, o.OrderItems...)

	return *inserted, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.Query) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC, id DESC").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.UserIds) > 0 {
		builder = builder.Where(sq.Eq{"user_id": filter.UserIds})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.UserId,
			&dal.Status,
			&dal.TotalCents,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID retrieves a single order or order.ErrNotFound.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.getByID(ctx, id, false)
}

// LockByID retrieves a single order with FOR UPDATE so concurrent fulfillment
// transactions on the same order serialize.
func (r *PostgresOrderRepository) LockByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.getByID(ctx, id, true)
}

func (r *PostgresOrderRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.scanOne(r.conn.QueryRow(ctx, query, args...))
}

// UpdateStatus sets the order status and returns the updated order. There is
// no transition graph: any status may replace any other.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	query, args, err := sq.Update("orders").
		Set("status", status.String()).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.scanOne(r.conn.QueryRow(ctx, query, args...))
}

// Delete removes an order; item rows cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}
