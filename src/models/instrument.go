package models

import "strings"

// InstrumentRecord is one row of the broker's instrument master CSV.
type InstrumentRecord struct {
	ExchangeID     string `csv:"EXCH_ID"`
	Segment        string `csv:"SEGMENT"`
	SecurityID     int    `csv:"SECURITY_ID"`
	InstrumentType string `csv:"INSTRUMENT_TYPE"`
	Symbol         string `csv:"SYMBOL"`
}

// IsNSEEquity reports whether the row describes an NSE cash-equity instrument.
// Everything else in the master (derivatives, other exchanges) is skipped.
func (r *InstrumentRecord) IsNSEEquity() bool {
	return r.ExchangeID == "NSE" && r.Segment == "E" && r.InstrumentType == "ES"
}

func (r *InstrumentRecord) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(r.Symbol))
}
