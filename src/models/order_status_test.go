package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus(t *testing.T) {
	t.Run("normalizes broker spellings", func(t *testing.T) {
		assert.Equal(t, OrderStatusTraded, NewOrderStatus(" traded "))
		assert.Equal(t, OrderStatusTriggerPending, NewOrderStatus("Trigger Pending"))
	})

	t.Run("maps alternate broker spellings onto the canonical set", func(t *testing.T) {
		// The order list spells these differently from the placement response.
		assert.True(t, NewOrderStatus("PUT ORDER REQUEST RECEIVED").IsActionable())
		assert.Equal(t, OrderStatusRequestReceived, NewOrderStatus("PUT ORDER REQUEST RECEIVED"))

		assert.True(t, NewOrderStatus("COMPLETED").IsFilled())
		assert.True(t, NewOrderStatus("COMPLETED").IsTerminal())

		assert.True(t, NewOrderStatus("TRADE").IsFilled())
		assert.True(t, NewOrderStatus("TRADE").IsTerminal())
	})

	t.Run("resting statuses are actionable and not terminal", func(t *testing.T) {
		for _, status := range []OrderStatus{
			OrderStatusPending,
			OrderStatusOpen,
			OrderStatusTriggerPending,
			OrderStatusValidationPending,
			OrderStatusRequestReceived,
		} {
			assert.True(t, status.IsActionable(), string(status))
			assert.False(t, status.IsFilled(), string(status))
			assert.False(t, status.IsTerminal(), string(status))
		}
	})

	t.Run("executed statuses are filled and terminal", func(t *testing.T) {
		for _, status := range []OrderStatus{
			OrderStatusTraded,
			OrderStatusExecuted,
			OrderStatusFilled,
			OrderStatusComplete,
		} {
			assert.True(t, status.IsFilled(), string(status))
			assert.True(t, status.IsTerminal(), string(status))
			assert.False(t, status.IsActionable(), string(status))
		}
	})

	t.Run("partial fill counts as filled but not terminal", func(t *testing.T) {
		assert.True(t, OrderStatusPartiallyFilled.IsFilled())
		assert.False(t, OrderStatusPartiallyFilled.IsTerminal())
	})

	t.Run("dead statuses are terminal but not filled", func(t *testing.T) {
		for _, status := range []OrderStatus{
			OrderStatusCancelled,
			OrderStatusRejected,
			OrderStatusExpired,
			OrderStatusClosed,
		} {
			assert.True(t, status.IsTerminal(), string(status))
			assert.False(t, status.IsFilled(), string(status))
			assert.False(t, status.IsActionable(), string(status))
		}
	})

	t.Run("unknown status is inert", func(t *testing.T) {
		status := NewOrderStatus("SOMETHING_NEW")

		assert.False(t, status.IsActionable())
		assert.False(t, status.IsFilled())
		assert.False(t, status.IsTerminal())
	})
}
