package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvesh2019/dhan-trading/src/models"
)

func restingStop(orderID, symbol string, side models.TransactionType, updatedAt time.Time) *models.Order {
	return &models.Order{
		OrderID:   orderID,
		Symbol:    symbol,
		Side:      side,
		Type:      models.OrderTypeStopLossMarket,
		Product:   models.ProductTypeIntraday,
		Status:    models.OrderStatusTriggerPending,
		Quantity:  10,
		UpdatedAt: updatedAt,
	}
}

func TestFindRestingStop(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("finds the stop protecting the symbol", func(t *testing.T) {
		// arrange
		orders := []*models.Order{
			restingStop("1", "XYZ", models.TransactionTypeSell, base),
			restingStop("2", "ABC", models.TransactionTypeSell, base),
		}

		// act
		found := FindRestingStop(orders, "xyz ", models.TransactionTypeSell)

		// assert
		require.NotNil(t, found)
		assert.Equal(t, "1", found.OrderID)
	})

	t.Run("ignores the wrong side", func(t *testing.T) {
		orders := []*models.Order{
			restingStop("1", "XYZ", models.TransactionTypeBuy, base),
		}

		assert.Nil(t, FindRestingStop(orders, "XYZ", models.TransactionTypeSell))
	})

	t.Run("ignores non stop orders", func(t *testing.T) {
		order := restingStop("1", "XYZ", models.TransactionTypeSell, base)
		order.Type = models.OrderTypeLimit

		assert.Nil(t, FindRestingStop([]*models.Order{order}, "XYZ", models.TransactionTypeSell))
	})

	t.Run("ignores terminal orders", func(t *testing.T) {
		order := restingStop("1", "XYZ", models.TransactionTypeSell, base)
		order.Status = models.OrderStatusCancelled

		assert.Nil(t, FindRestingStop([]*models.Order{order}, "XYZ", models.TransactionTypeSell))
	})

	t.Run("ignores non intraday orders", func(t *testing.T) {
		order := restingStop("1", "XYZ", models.TransactionTypeSell, base)
		order.Product = "CNC"

		assert.Nil(t, FindRestingStop([]*models.Order{order}, "XYZ", models.TransactionTypeSell))
	})

	t.Run("most recently updated candidate wins regardless of list order", func(t *testing.T) {
		// arrange
		older := restingStop("1", "XYZ", models.TransactionTypeSell, base)
		newer := restingStop("2", "XYZ", models.TransactionTypeSell, base.Add(time.Minute))

		// act
		forward := FindRestingStop([]*models.Order{older, newer}, "XYZ", models.TransactionTypeSell)
		backward := FindRestingStop([]*models.Order{newer, older}, "XYZ", models.TransactionTypeSell)

		// assert
		require.NotNil(t, forward)
		require.NotNil(t, backward)
		assert.Equal(t, "2", forward.OrderID)
		assert.Equal(t, "2", backward.OrderID)
	})
}

func TestMatchOrderCandidate(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	entry := func(orderID, securityID, symbol string, quantity int, updatedAt time.Time) *models.Order {
		return &models.Order{
			OrderID:    orderID,
			SecurityID: securityID,
			Symbol:     symbol,
			Side:       models.TransactionTypeBuy,
			Quantity:   quantity,
			UpdatedAt:  updatedAt,
		}
	}

	t.Run("matches on security id and quantity", func(t *testing.T) {
		// arrange
		orders := []*models.Order{
			entry("1", "11536", "XYZ", 10, base),
			entry("2", "11536", "XYZ", 25, base),
			entry("3", "99999", "ABC", 10, base),
		}

		// act
		found := MatchOrderCandidate(orders, "11536", "XYZ", 10, models.TransactionTypeBuy)

		// assert
		require.NotNil(t, found)
		assert.Equal(t, "1", found.OrderID)
	})

	t.Run("falls back to symbol when the list omits security ids", func(t *testing.T) {
		// arrange
		orders := []*models.Order{
			entry("1", "", "XYZ", 10, base),
		}

		// act
		found := MatchOrderCandidate(orders, "11536", "xyz", 10, models.TransactionTypeBuy)

		// assert
		require.NotNil(t, found)
		assert.Equal(t, "1", found.OrderID)
	})

	t.Run("ties break on the most recent update", func(t *testing.T) {
		// arrange
		orders := []*models.Order{
			entry("1", "11536", "XYZ", 10, base),
			entry("2", "11536", "XYZ", 10, base.Add(30*time.Second)),
		}

		// act
		found := MatchOrderCandidate(orders, "11536", "XYZ", 10, models.TransactionTypeBuy)

		// assert
		require.NotNil(t, found)
		assert.Equal(t, "2", found.OrderID)
	})

	t.Run("no candidate returns nil", func(t *testing.T) {
		orders := []*models.Order{
			entry("1", "11536", "XYZ", 25, base),
		}

		assert.Nil(t, MatchOrderCandidate(orders, "11536", "XYZ", 10, models.TransactionTypeSell))
	})
}
