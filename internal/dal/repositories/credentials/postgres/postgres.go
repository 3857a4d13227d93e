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
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
)

var credentialColumns = []string{
	"id",
	"order_id",
	"email",
	"password",
	"details",
	"created_at",
	"updated_at",
}

// CredentialsDal represents the credentials data access layer model. The
// secret columns are nullable: NULL means "never set", empty string means
// "set and cleared".
type CredentialsDal struct {
	Id        int64
	OrderId   int64
	Email     *string
	Password  *string
	Details   *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ToModel converts CredentialsDal to the service layer Credentials model.
func (c *CredentialsDal) ToModel() *credentials.Credentials {
	return &credentials.Credentials{
		ID:        c.Id,
		OrderID:   c.OrderId,
		Email:     c.Email,
		Password:  c.Password,
		Details:   c.Details,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type PostgresCredentialsRepository struct {
	conn postgres.Querier
}

func NewPostgresCredentialsRepository(conn postgres.Querier) *PostgresCredentialsRepository {
	return &PostgresCredentialsRepository{
		conn: conn,
	}
}

func (r *PostgresCredentialsRepository) scanOne(row pgx.Row) (*credentials.Credentials, error) {
	var dal CredentialsDal
	err := row.Scan(
		&dal.Id,
		&dal.OrderId,
		&dal.Email,
		&dal.Password,
		&dal.Details,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, credentials.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan credentials: %w", err)
	}

	return dal.ToModel(), nil
}

// GetByOrderID retrieves the credentials row for an order.
func (r *PostgresCredentialsRepository) GetByOrderID(ctx context.Context, orderID int64) (*credentials.Credentials, error) {
	query, args, err := sq.Select(credentialColumns...).
		From("credentials").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	return r.scanOne(r.conn.QueryRow(ctx, query, args...))
}

// QueryByOrderIds retrieves the credentials rows for a batch of orders.
func (r *PostgresCredentialsRepository) QueryByOrderIds(ctx context.Context, orderIds []int64) ([]credentials.Credentials, error) {
	if len(orderIds) == 0 {
		return []credentials.Credentials{}, nil
	}

	query, args, err := sq.Select(credentialColumns...).
		From("credentials").
		Where(sq.Eq{"order_id": orderIds}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var result []credentials.Credentials
	for rows.Next() {
		var dal CredentialsDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.Email,
			&dal.Password,
			&dal.Details,
			&dal.CreatedAt,
			&dal.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credentials: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Insert creates the credentials row for an order. The order_id unique
// constraint enforces the 1:1 relationship.
func (r *PostgresCredentialsRepository) Insert(ctx context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	now := time.Now()

	query, args, err := sq.Insert("credentials").
		Columns("order_id", "email", "password", "details", "created_at", "updated_at").
		Values(orderID, payload.Email, payload.Password, payload.Details, now, now).
		Suffix("RETURNING " + strings.Join(credentialColumns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	inserted, err := r.scanOne(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to insert credentials: %w", err)
	}

	return inserted, nil
}

// UpdateFields applies a partial update: only the payload's non-nil fields
// are written, everything else survives untouched.
func (r *PostgresCredentialsRepository) UpdateFields(ctx context.Context, orderID int64, payload credentials.Payload) (*credentials.Credentials, error) {
	builder := sq.Update("credentials").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"order_id": orderID}).
		Suffix("RETURNING " + strings.Join(credentialColumns, ", ")).
		PlaceholderFormat(sq.Dollar)

	if payload.Email != nil {
		builder = builder.Set("email", *payload.Email)
	}
	if payload.Password != nil {
		builder = builder.Set("password", *payload.Password)
	}
	if payload.Details != nil {
		builder = builder.Set("details", *payload.Details)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	return r.scanOne(r.conn.QueryRow(ctx, query, args...))
}

// DeleteByOrderID removes the credentials row; the order is untouched.
func (r *PostgresCredentialsRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	query, args, err := sq.Delete("credentials").
		Where(sq.Eq{"order_id": orderID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return credentials.ErrNotFound
	}

	return nil
}
