package frame

import (
	"iter"
	"time"
)

// Schedule yields the sampling timestamps i/rate for i = 0, 1, 2, ... while the
// timestamp is strictly before duration. Timestamps are derived from the index
// so they do not accumulate rounding error over long videos.
func Schedule(duration time.Duration, rate float64) iter.Seq2[int, time.Duration] {
	return func(yield func(int, time.Duration) bool) {
		if rate <= 0 || duration <= 0 {
			return
		}
		for i := 0; ; i++ {
			at := time.Duration(float64(i) / rate * float64(time.Second))
			if at >= duration {
				return
			}
			if !yield(i, at) {
				return
			}
		}
	}
}

// Count returns how many timestamps Schedule yields for duration and rate
func Count(duration time.Duration, rate float64) int {
	n := 0
	for range Schedule(duration, rate) {
		n++
	}
	return n
}
