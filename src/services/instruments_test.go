package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrumentMasterFromCSV(t *testing.T) {
	t.Run("keeps NSE equities and resolves symbols", func(t *testing.T) {
		// arrange
		csvBytes := []byte(`EXCH_ID,SEGMENT,SECURITY_ID,INSTRUMENT_TYPE,SYMBOL
NSE,E,11536,ES,TCS
NSE,E,1333,ES,HDFCBANK
NSE,D,35415,OPTSTK,TCS-OPT
BSE,E,532540,ES,TCS
`)

		// act
		master, err := NewInstrumentMasterFromCSV(csvBytes)

		// assert
		require.NoError(t, err)
		assert.Equal(t, 2, master.Len())

		securityID, ok := master.Resolve("TCS")
		require.True(t, ok)
		assert.Equal(t, "11536", securityID)

		_, ok = master.Resolve("TCS-OPT")
		assert.False(t, ok)
	})

	t.Run("resolution is case and whitespace insensitive", func(t *testing.T) {
		// arrange
		csvBytes := []byte(`EXCH_ID,SEGMENT,SECURITY_ID,INSTRUMENT_TYPE,SYMBOL
NSE,E,11536,ES,TCS
`)
		master, err := NewInstrumentMasterFromCSV(csvBytes)
		require.NoError(t, err)

		// act
		securityID, ok := master.Resolve(" tcs ")

		// assert
		require.True(t, ok)
		assert.Equal(t, "11536", securityID)
	})

	t.Run("accepts the UNDERLYING_SYMBOL header variant", func(t *testing.T) {
		// arrange
		csvBytes := []byte(`EXCH_ID,SEGMENT,SECURITY_ID,INSTRUMENT_TYPE,UNDERLYING_SYMBOL
NSE,E,11536,ES,TCS
`)

		// act
		master, err := NewInstrumentMasterFromCSV(csvBytes)

		// assert
		require.NoError(t, err)

		securityID, ok := master.Resolve("TCS")
		require.True(t, ok)
		assert.Equal(t, "11536", securityID)
	})

	t.Run("first row wins on duplicate symbols", func(t *testing.T) {
		// arrange
		csvBytes := []byte(`EXCH_ID,SEGMENT,SECURITY_ID,INSTRUMENT_TYPE,SYMBOL
NSE,E,11536,ES,TCS
NSE,E,99999,ES,TCS
`)

		// act
		master, err := NewInstrumentMasterFromCSV(csvBytes)

		// assert
		require.NoError(t, err)

		securityID, ok := master.Resolve("TCS")
		require.True(t, ok)
		assert.Equal(t, "11536", securityID)
	})
}
