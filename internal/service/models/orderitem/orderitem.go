package orderitem

// OrderItem is one line item within an order. The unit price is a snapshot
// taken at order-creation time and never recomputed from the catalog.
type OrderItem struct {
	ID         int64 `json:"id"`
	OrderID    int64 `json:"orderId"`
	ProductID  int64 `json:"productId"`
	Quantity   int   `json:"quantity"`
	PriceCents int64 `json:"price"`
}

// ItemInput is the caller-supplied shape used to create order items.
type ItemInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
