package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScreenerSignal is one symbol emitted by the external screener for a side.
type ScreenerSignal struct {
	Symbol string
	Side   TransactionType
}

// ScanConfig holds the screener scan clauses, loaded from a YAML file so the
// queries can change without a rebuild.
type ScanConfig struct {
	BuyScanClause  string `yaml:"buy_scan_clause"`
	SellScanClause string `yaml:"sell_scan_clause"`
}

func LoadScanConfig(path string) (*ScanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScanConfig: failed to read %s: %w", path, err)
	}

	var cfg ScanConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadScanConfig: failed to parse %s: %w", path, err)
	}

	if cfg.BuyScanClause == "" && cfg.SellScanClause == "" {
		return nil, fmt.Errorf("LoadScanConfig: %s defines no scan clauses", path)
	}

	return &cfg, nil
}
