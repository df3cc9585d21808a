package analysis

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/domain/tensor"
)

// indexSampler returns frames whose every byte equals the frame's schedule
// index, so a reconstructor can tell frames apart
type indexSampler struct {
	duration time.Duration
	rate     float64
	failAt   int
	failErr  error

	mu    sync.Mutex
	grabs int
}

func (s *indexSampler) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	return s.duration, nil
}

func (s *indexSampler) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	s.mu.Lock()
	s.grabs++
	s.mu.Unlock()

	idx := int(math.Round(at.Seconds() * s.rate))
	if s.failErr != nil && idx == s.failAt {
		return nil, s.failErr
	}

	pix := make([]byte, frame.BufferLen)
	for i := range pix {
		pix[i] = byte(idx)
	}
	return pix, nil
}

// scriptedReconstructor offsets each input by the score assigned to its frame
type scriptedReconstructor struct {
	scores  []float64
	failErr error

	mu    sync.Mutex
	calls int
}

func (r *scriptedReconstructor) Reconstruct(ctx context.Context, in tensor.Tensor) (tensor.Tensor, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	if r.failErr != nil {
		return nil, r.failErr
	}

	idx := int(math.Round((float64(in[0])/2 + 0.5) * 255))
	if idx >= len(r.scores) {
		return nil, errors.New("no score scripted for frame")
	}

	out := make(tensor.Tensor, len(in))
	delta := float32(r.scores[idx])
	for i, v := range in {
		out[i] = v + delta
	}
	return out, nil
}

var _ anomaly.Reconstructor = (*scriptedReconstructor)(nil)

// newFixture builds a sampler producing one frame per scripted score at 2fps
func newFixture(scores ...float64) (*indexSampler, *scriptedReconstructor) {
	rate := 2.0
	sampler := &indexSampler{
		duration: time.Duration(float64(len(scores)) / rate * float64(time.Second)),
		rate:     rate,
		failAt:   -1,
	}
	return sampler, &scriptedReconstructor{scores: scores}
}
