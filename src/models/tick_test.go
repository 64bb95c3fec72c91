package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundToTick(t *testing.T) {
	t.Run("already on the grid is unchanged", func(t *testing.T) {
		assert.Equal(t, 99.10, RoundToTick(99.10, 0.05))
		assert.Equal(t, 100.00, RoundToTick(100.00, 0.05))
	})

	t.Run("rounds to the nearest tick", func(t *testing.T) {
		assert.Equal(t, 99.10, RoundToTick(99.11, 0.05))
		assert.Equal(t, 99.10, RoundToTick(99.12, 0.05))
		assert.Equal(t, 99.15, RoundToTick(99.13, 0.05))
		assert.Equal(t, 99.15, RoundToTick(99.14, 0.05))
	})

	t.Run("float noise does not escape the grid", func(t *testing.T) {
		assert.Equal(t, 99.10, RoundToTick(99.100000000001, 0.05))
		assert.Equal(t, 0.05, RoundToTick(0.049999999999, 0.05))
	})

	t.Run("non positive tick falls back to the default", func(t *testing.T) {
		assert.Equal(t, 99.10, RoundToTick(99.12, 0))
		assert.Equal(t, 99.10, RoundToTick(99.12, -1))
	})
}
