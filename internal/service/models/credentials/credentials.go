package credentials

import (
	"errors"
	"time"
)

var (
	// ErrNotFound covers both "never provisioned" and "exists but not
	// disclosable to this actor" so existence is never leaked.
	ErrNotFound = errors.New("credentials not found")

	ErrAlreadyExists = errors.New("credentials already exist")
)

// Credentials is the secret access payload an admin provisions for a
// digital-goods order. It is a side table keyed 1:1 on the order: a missing
// row means "not yet provisioned", which is distinct from a row with empty
// fields.
type Credentials struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"orderId"`
	Email     *string   `json:"email"`
	Password  *string   `json:"password"`
	Details   *string   `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Payload is a partial update: nil fields are left unchanged, non-nil fields
// overwrite (a pointer to "" clears a field). JSON decoding keeps the
// absent-vs-empty distinction for free.
type Payload struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Details  *string `json:"details"`
}

// Empty reports whether the payload carries no fields at all.
func (p Payload) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Details == nil
}

// Apply merges the payload's set fields onto c, leaving nil fields untouched.
func (p Payload) Apply(c *Credentials) {
	if p.Email != nil {
		c.Email = p.Email
	}
	if p.Password != nil {
		c.Password = p.Password
	}
	if p.Details != nil {
		c.Details = p.Details
	}
}
