package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDhanIntradayDTOToCandles(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("zips parallel arrays into sorted candles", func(t *testing.T) {
		// arrange
		later := time.Date(2024, 3, 1, 10, 5, 0, 0, loc)
		earlier := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

		dto := &DhanIntradayDTO{
			Open:      []float64{100.10, 99.80},
			High:      []float64{100.60, 100.40},
			Low:       []float64{100.00, 99.10},
			Close:     []float64{100.30, 100.05},
			Volume:    []float64{8000, 12500},
			Timestamp: []float64{float64(later.Unix()), float64(earlier.Unix())},
		}

		// act
		candles := dto.ToCandles(loc)

		// assert
		require.Len(t, candles, 2)
		assert.Equal(t, earlier, candles[0].Timestamp)
		assert.Equal(t, 99.10, candles[0].Low)
		assert.Equal(t, later, candles[1].Timestamp)
		assert.Equal(t, 100.60, candles[1].High)
	})

	t.Run("accepts millisecond epochs", func(t *testing.T) {
		// arrange
		ts := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

		dto := &DhanIntradayDTO{
			Open:      []float64{99.80},
			High:      []float64{100.40},
			Low:       []float64{99.10},
			Close:     []float64{100.05},
			Volume:    []float64{12500},
			Timestamp: []float64{float64(ts.UnixMilli())},
		}

		// act
		candles := dto.ToCandles(loc)

		// assert
		require.Len(t, candles, 1)
		assert.Equal(t, ts, candles[0].Timestamp)
	})

	t.Run("drops entries without a timestamp", func(t *testing.T) {
		// arrange
		ts := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

		dto := &DhanIntradayDTO{
			Open:      []float64{99.80, 100.10},
			High:      []float64{100.40, 100.60},
			Low:       []float64{99.10, 100.00},
			Close:     []float64{100.05, 100.30},
			Volume:    []float64{12500, 8000},
			Timestamp: []float64{float64(ts.Unix()), 0},
		}

		// act
		candles := dto.ToCandles(loc)

		// assert
		require.Len(t, candles, 1)
		assert.Equal(t, 99.10, candles[0].Low)
	})

	t.Run("ragged arrays zero fill instead of panicking", func(t *testing.T) {
		// arrange
		ts := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)

		dto := &DhanIntradayDTO{
			Open:      []float64{99.80},
			High:      []float64{},
			Low:       []float64{99.10},
			Close:     []float64{100.05},
			Volume:    []float64{12500},
			Timestamp: []float64{float64(ts.Unix())},
		}

		// act
		candles := dto.ToCandles(loc)

		// assert
		require.Len(t, candles, 1)
		assert.Equal(t, 0.0, candles[0].High)
	})

	t.Run("empty response yields no candles", func(t *testing.T) {
		dto := &DhanIntradayDTO{}

		assert.Empty(t, dto.ToCandles(loc))
	})
}
