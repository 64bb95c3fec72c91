package utils

import (
	"math/rand"
	"time"
)

// RandomDuration returns a duration uniformly drawn from [min, max]. The fast
// watcher jitters its cadence with this to avoid synchronizing with the
// broker's rate-limit windows.
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}

	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}
