package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDhanResponse(t *testing.T) {
	type quote struct {
		LastPrice float64 `json:"last_price"`
	}

	t.Run("unwraps the success envelope", func(t *testing.T) {
		// arrange
		response := []byte(`{"status":"success","data":{"last_price":99.10}}`)

		// act
		result, err := ParseDhanResponse[quote](response)

		// assert
		require.NoError(t, err)
		assert.Equal(t, 99.10, result.LastPrice)
	})

	t.Run("failure status is an error", func(t *testing.T) {
		// arrange
		response := []byte(`{"status":"failure","data":{"errorCode":"DH-901"}}`)

		// act
		_, err := ParseDhanResponse[quote](response)

		// assert
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failure")
	})

	t.Run("null data yields the zero value", func(t *testing.T) {
		// arrange
		response := []byte(`{"status":"success","data":null}`)

		// act
		result, err := ParseDhanResponse[quote](response)

		// assert
		require.NoError(t, err)
		assert.Zero(t, result.LastPrice)
	})

	t.Run("bare object payload is accepted", func(t *testing.T) {
		// arrange
		response := []byte(`{"last_price":99.10}`)

		// act
		result, err := ParseDhanResponse[quote](response)

		// assert
		require.NoError(t, err)
		assert.Equal(t, 99.10, result.LastPrice)
	})

	t.Run("bare array payload is accepted", func(t *testing.T) {
		// arrange
		response := []byte(`[{"last_price":99.10},{"last_price":100.40}]`)

		// act
		result, err := ParseDhanResponse[[]quote](response)

		// assert
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, 100.40, result[1].LastPrice)
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		_, err := ParseDhanResponse[quote]([]byte(`{`))

		assert.Error(t, err)
	})
}
