package icatalog

import (
	"context"

	"github.com/dgstore/fulfillment/internal/service/models/product"
)

// PostgresRepository is a read-only view of the external catalog. Missing and
// inactive products are simply absent from the result.
type PostgresRepository interface {
	FindActive(ctx context.Context, productIds []int64) (map[int64]product.Product, error)
}
