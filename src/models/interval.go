package models

import "time"

// PreviousCandleRange returns the start and end of the most recently completed
// candle interval before now. The floor is computed from minutes since midnight
// in now's location, so a 5-minute interval always aligns to :00, :05, :10 and
// so on regardless of timezone offset. When now falls exactly on a boundary the
// previous full interval is returned, never the one that just started.
func PreviousCandleRange(now time.Time, interval time.Duration) (time.Time, time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight)
	floor := midnight.Add(elapsed.Truncate(interval))

	start := floor.Add(-interval)
	end := floor.Add(-time.Second)

	return start, end
}

// NextBoundaryAfter returns the first instant strictly after now that lies on
// an interval boundary plus offset. The trail loop sleeps until this instant so
// the just-completed candle is available when it wakes.
func NextBoundaryAfter(now time.Time, interval time.Duration, offset time.Duration) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	elapsed := now.Sub(midnight)
	floor := midnight.Add(elapsed.Truncate(interval))

	candidate := floor.Add(offset)
	if !candidate.After(now) {
		candidate = candidate.Add(interval)
	}

	return candidate
}
