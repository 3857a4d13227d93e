package order

import "errors"

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var (
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrNotFound is returned when an operation targets a nonexistent order.
	ErrNotFound = errors.New("order not found")

	// ErrImmutable is returned when a COMPLETED order is deleted.
	ErrImmutable = errors.New("completed orders cannot be deleted")
)

// ParseStatus validates a status string. Transitions between statuses are
// intentionally unrestricted: any status may move to any other, including
// CANCELLED back to COMPLETED. Admins own the lifecycle and the UI is the
// only guard rail.
func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusPending.String(),
		StatusProcessing.String(),
		StatusCompleted.String(),
		StatusCancelled.String():
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Status) String() string {
	return string(s)
}
