package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/service/models/user"
)

// PostgresIdentityRepository reads the users mirror maintained by the
// external identity provider.
type PostgresIdentityRepository struct {
	conn postgres.Querier
}

func NewPostgresIdentityRepository(conn postgres.Querier) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		conn: conn,
	}
}

// GetByIds returns the users with the given ids, keyed by id.
func (r *PostgresIdentityRepository) GetByIds(ctx context.Context, ids []int64) (map[int64]user.User, error) {
	if len(ids) == 0 {
		return map[int64]user.User{}, nil
	}

	query, args, err := sq.Select("id", "name", "email").
		From("users").
		Where(sq.Eq{"id": ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]user.User, len(ids))
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result[u.ID] = u
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
