package actor

import (
	"context"
	"errors"
)

// Role is the authorization level supplied by the identity provider.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var (
	ErrInvalidRole = errors.New("invalid role")

	// ErrUnauthorized is returned when the actor lacks the required role
	// or tries to read another user's data.
	ErrUnauthorized = errors.New("unauthorized")
)

func ParseRole(s string) (Role, error) {
	switch s {
	case RoleUser.String():
		return RoleUser, nil
	case RoleAdmin.String():
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated identity performing an operation. The role is
// trusted as given; authorization decisions beyond role checks do not happen
// in this service.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type ctxKey struct{}

// WithContext stores the actor on the request context.
func WithContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext fetches the actor set by the auth middleware.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
