package order_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "pending", order.Pending.String())
	assert.Equal(t, "confirmed", order.Confirmed.String())
	assert.Equal(t, "shipped", order.Shipped.String())
	assert.Equal(t, "delivered", order.Delivered.String())
	assert.Equal(t, "cancelled", order.Cancelled.String())
	assert.Equal(t, "unknown", order.Unknown.String())
	assert.Equal(t, "unknown", order.Status(42).String())
}

func TestStatus_Validate(t *testing.T) {
	assert.NoError(t, order.Pending.Validate())
	assert.NoError(t, order.Cancelled.Validate())
	assert.Error(t, order.Unknown.Validate())
	assert.Error(t, order.Status(42).Validate())
}

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		from       order.Status
		transition func(order.Status) (order.Status, error)
		want       order.Status
		wantErr    bool
	}{
		{"confirm from pending", order.Pending, order.Status.Confirm, order.Confirmed, false},
		{"confirm is idempotent", order.Confirmed, order.Status.Confirm, order.Confirmed, false},
		{"confirm from shipped fails", order.Shipped, order.Status.Confirm, 0, true},

		{"ship from confirmed", order.Confirmed, order.Status.Ship, order.Shipped, false},
		{"ship is idempotent", order.Shipped, order.Status.Ship, order.Shipped, false},
		{"ship from pending fails", order.Pending, order.Status.Ship, 0, true},
		{"ship from delivered fails", order.Delivered, order.Status.Ship, 0, true},

		{"complete from shipped", order.Shipped, order.Status.CompleteDelivery, order.Delivered, false},
		{"complete from confirmed", order.Confirmed, order.Status.CompleteDelivery, order.Delivered, false},
		{"complete from pending fails", order.Pending, order.Status.CompleteDelivery, 0, true},

		{"revert from pending", order.Pending, order.Status.RevertToConfirmed, order.Confirmed, false},
		{"revert from confirmed", order.Confirmed, order.Status.RevertToConfirmed, order.Confirmed, false},
		{"revert from shipped", order.Shipped, order.Status.RevertToConfirmed, order.Confirmed, false},
		{"revert from delivered fails", order.Delivered, order.Status.RevertToConfirmed, 0, true},
		{"revert from cancelled fails", order.Cancelled, order.Status.RevertToConfirmed, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.transition(tt.from)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, order.Pending.IsTerminal())
	assert.False(t, order.Confirmed.IsTerminal())
	assert.False(t, order.Shipped.IsTerminal())
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
}
