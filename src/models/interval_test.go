package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviousCandleRange(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("mid interval returns the last completed candle", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 10, 7, 32, 0, loc)

		// act
		start, end := PreviousCandleRange(now, 5*time.Minute)

		// assert
		assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2024, 3, 1, 10, 4, 59, 0, loc), end)
	})

	t.Run("boundary exact returns the previous full interval", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 10, 5, 0, 0, loc)

		// act
		start, end := PreviousCandleRange(now, 5*time.Minute)

		// assert
		assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2024, 3, 1, 10, 4, 59, 0, loc), end)
	})

	t.Run("one second after boundary moves to the next interval", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 10, 5, 1, 0, loc)

		// act
		start, end := PreviousCandleRange(now, 5*time.Minute)

		// assert
		assert.Equal(t, time.Date(2024, 3, 1, 10, 5, 0, 0, loc), start)
		assert.Equal(t, time.Date(2024, 3, 1, 10, 9, 59, 0, loc), end)
	})

	t.Run("fifteen minute interval aligns to the quarter hour", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 11, 16, 45, 0, loc)

		// act
		start, end := PreviousCandleRange(now, 15*time.Minute)

		// assert
		assert.Equal(t, time.Date(2024, 3, 1, 11, 0, 0, 0, loc), start)
		assert.Equal(t, time.Date(2024, 3, 1, 11, 14, 59, 0, loc), end)
	})

	t.Run("range always spans interval minus one second", func(t *testing.T) {
		// arrange
		interval := 5 * time.Minute
		now := time.Date(2024, 3, 1, 9, 15, 0, 0, loc)

		for i := 0; i < 500; i++ {
			// act
			start, end := PreviousCandleRange(now, interval)

			// assert
			assert.Equal(t, interval-time.Second, end.Sub(start))
			assert.True(t, end.Before(now))

			now = now.Add(37 * time.Second)
		}
	})
}

func TestNextBoundaryAfter(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	t.Run("mid interval waits for the next boundary plus offset", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 10, 7, 32, 0, loc)

		// act
		next := NextBoundaryAfter(now, 5*time.Minute, 5*time.Second)

		// assert
		assert.Equal(t, time.Date(2024, 3, 1, 10, 10, 5, 0, loc), next)
	})

	t.Run("result is always strictly after now", func(t *testing.T) {
		// arrange
		now := time.Date(2024, 3, 1, 10, 10, 5, 0, loc)

		// act
		next := NextBoundaryAfter(now, 5*time.Minute, 5*time.Second)

		// assert
		assert.True(t, next.After(now))
		assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 5, 0, loc), next)
	})
}
