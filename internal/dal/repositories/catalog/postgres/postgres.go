package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dgstore/fulfillment/internal/dal/postgres"
	"github.com/dgstore/fulfillment/internal/service/models/product"
)

// PostgresCatalogRepository reads the external product catalog. This service
// never writes to it; the catalog admin flows live elsewhere.
type PostgresCatalogRepository struct {
	conn postgres.Querier
}

func NewPostgresCatalogRepository(conn postgres.Querier) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		conn: conn,
	}
}

// FindActive returns the active products among the given ids, keyed by id.
// Missing and inactive products are absent from the map so the order ledger
// can reject the order.
func (r *PostgresCatalogRepository) FindActive(ctx context.Context, productIds []int64) (map[int64]product.Product, error) {
	if len(productIds) == 0 {
		return map[int64]product.Product{}, nil
	}

	query, args, err := sq.Select("id", "name", "price_cents", "sale_price_cents", "active", "category_id").
		From("products").
		Where(sq.Eq{"id": productIds}).
		Where(sq.Eq{"active": true}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]product.Product, len(productIds))
	for rows.Next() {
		var p product.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.PriceCents,
			&p.SalePriceCents,
			&p.Active,
			&p.CategoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		result[p.ID] = p
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
