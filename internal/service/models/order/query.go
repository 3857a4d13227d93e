package order

// Query represents filter parameters for querying orders.
type Query struct {
	Ids     []int64 `json:"ids,omitempty"`
	UserIds []int64 `json:"userIds,omitempty"`
	Limit   int     `json:"limit,omitempty"`
	Offset  int     `json:"offset,omitempty"`
}
