package product

import "errors"

// ErrUnavailable is returned when a referenced product is missing or
// inactive at order-creation time.
var ErrUnavailable = errors.New("product unavailable")

// Product is a read-only view of the external catalog. Orders copy the unit
// price out of it at creation time; they never reference it live.
type Product struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	PriceCents     int64  `json:"price"`
	SalePriceCents *int64 `json:"salePrice,omitempty"`
	Active         bool   `json:"active"`
	CategoryID     int64  `json:"categoryId"`
}

// UnitPriceCents is the price snapshotted into an order item: the sale price
// when one is set, the list price otherwise.
func (p Product) UnitPriceCents() int64 {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}

	return p.PriceCents
}
