package anomaly

import (
	"math"
	"sync"
	"time"
)

// Tracker keeps the running maximum score across frames. It is safe for
// concurrent use; on equal scores the earliest frame wins so the result does
// not depend on observation order. NaN scores are counted as frames but never
// become the maximum.
type Tracker struct {
	mu     sync.Mutex
	max    float64
	at     time.Duration
	frames int
	seen   bool
}

// Observe records the score of the frame sampled at at
func (t *Tracker) Observe(score float64, at time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frames++
	if math.IsNaN(score) {
		return
	}
	if !t.seen || score > t.max || (score == t.max && at < t.at) {
		t.max = score
		t.at = at
		t.seen = true
	}
}

// Max returns the highest score seen so far (0 before any frame)
func (t *Tracker) Max() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max
}

// Frames returns the number of observed frames
func (t *Tracker) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// Outcome classifies the observed maximum against threshold
func (t *Tracker) Outcome(threshold float64) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Outcome{
		Label:          Classify(t.max, threshold),
		MaxScore:       t.max,
		Threshold:      threshold,
		FramesAnalyzed: t.frames,
		WorstFrameAt:   t.at,
	}
}
