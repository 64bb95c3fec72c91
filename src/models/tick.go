package models

import "math"

// DefaultTickSize is the exchange tick for NSE equities.
const DefaultTickSize = 0.05

// RoundToTick rounds price half-up to the nearest multiple of tick, then to two
// decimal places, which is the precision the broker accepts for trigger prices.
func RoundToTick(price float64, tick float64) float64 {
	if tick <= 0 {
		tick = DefaultTickSize
	}

	steps := math.Floor(price/tick + 0.5)

	return math.Round(steps*tick*100) / 100
}
