package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
	"github.com/dgstore/fulfillment/internal/service/models/credentials"
)

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PROCESSING", "COMPLETED", "CANCELLED"} {
		st, err := ParseStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, valid, st.String())
	}

	_, err := ParseStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanDisclose(t *testing.T) {
	creds := &credentials.Credentials{ID: 1, OrderID: 10}
	owner := actor.Actor{ID: 7, Role: actor.RoleUser}
	stranger := actor.Actor{ID: 8, Role: actor.RoleUser}
	admin := actor.Actor{ID: 1, Role: actor.RoleAdmin}

	tests := []struct {
		name   string
		status Status
		creds  *credentials.Credentials
		act    actor.Actor
		want   bool
	}{
		{"admin sees pending", StatusPending, creds, admin, true},
		{"admin sees completed", StatusCompleted, creds, admin, true},
		{"admin sees even without row", StatusCompleted, nil, admin, true},
		{"owner blocked while pending", StatusPending, creds, owner, false},
		{"owner blocked while processing", StatusProcessing, creds, owner, false},
		{"owner blocked while cancelled", StatusCancelled, creds, owner, false},
		{"owner sees completed", StatusCompleted, creds, owner, true},
		{"owner blocked when nothing provisioned", StatusCompleted, nil, owner, false},
		{"stranger never sees", StatusCompleted, creds, stranger, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{ID: 10, UserID: 7, Status: tt.status}
			assert.Equal(t, tt.want, CanDisclose(o, tt.creds, tt.act))
		})
	}
}
