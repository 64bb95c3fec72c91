package models

import "errors"

// ErrNoCandleData is returned when the previous interval has no usable price
// data, e.g. the market is closed or the symbol did not trade. Callers skip the
// symbol for the current pass instead of retrying immediately.
var ErrNoCandleData = errors.New("no candle data for interval")

// StopTrigger derives the tick-aligned stop trigger price protecting a position
// in the given direction: the candle low for a long, the candle high for a
// short.
func (c *Candle) StopTrigger(direction PositionDirection, tick float64) (float64, error) {
	if c == nil || c.Volume <= 0 {
		return 0, ErrNoCandleData
	}

	raw := c.Low
	if direction == PositionDirectionShort {
		raw = c.High
	}

	if raw <= 0 {
		return 0, ErrNoCandleData
	}

	return RoundToTick(raw, tick), nil
}
