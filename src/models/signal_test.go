package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScanConfig(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()

		path := filepath.Join(t.TempDir(), "scans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		return path
	}

	t.Run("loads both scan clauses", func(t *testing.T) {
		// arrange
		path := writeConfig(t, "buy_scan_clause: ( {cash} ( latest close > latest sma(20) ) )\nsell_scan_clause: ( {cash} ( latest close < latest sma(20) ) )\n")

		// act
		cfg, err := LoadScanConfig(path)

		// assert
		require.NoError(t, err)
		assert.Contains(t, cfg.BuyScanClause, "latest close >")
		assert.Contains(t, cfg.SellScanClause, "latest close <")
	})

	t.Run("a single side is enough", func(t *testing.T) {
		// arrange
		path := writeConfig(t, "buy_scan_clause: ( {cash} ( latest close > 100 ) )\n")

		// act
		cfg, err := LoadScanConfig(path)

		// assert
		require.NoError(t, err)
		assert.NotEmpty(t, cfg.BuyScanClause)
		assert.Empty(t, cfg.SellScanClause)
	})

	t.Run("no clauses at all is an error", func(t *testing.T) {
		path := writeConfig(t, "unrelated: true\n")

		_, err := LoadScanConfig(path)

		assert.Error(t, err)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadScanConfig(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.Error(t, err)
	})
}
