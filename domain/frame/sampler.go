package frame

import (
	"context"
	"fmt"
	"iter"
	"time"
)

// Sampler defines the port for pulling individual frames out of a video.
// This is a port that can be implemented by different decoding adapters.
type Sampler interface {
	// Duration returns the playable length of the video
	Duration(ctx context.Context, videoPath string) (time.Duration, error)

	// Grab seeks to at, waits for the seek to complete and returns the visible
	// frame scaled to Size x Size RGBA
	Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// Frames returns an iterator over the sampled frames of a video. The duration
// is probed once; each frame is then grabbed only when the consumer asks for
// it, so ranging over the result is strictly sequential. Iteration ends after
// the first error, which is yielded with a zero Frame.
func Frames(ctx context.Context, sampler Sampler, videoPath string, rate float64) iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		duration, err := sampler.Duration(ctx, videoPath)
		if err != nil {
			yield(Frame{}, fmt.Errorf("failed to read duration: %w", err))
			return
		}
		if duration <= 0 {
			yield(Frame{}, fmt.Errorf("%w: %s", ErrNoDuration, videoPath))
			return
		}

		for i, at := range Schedule(duration, rate) {
			if err := ctx.Err(); err != nil {
				yield(Frame{}, err)
				return
			}

			f, err := GrabAt(ctx, sampler, videoPath, i, at)
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// GrabAt grabs a single frame and wraps it with its schedule position
func GrabAt(ctx context.Context, sampler Sampler, videoPath string, index int, at time.Duration) (Frame, error) {
	pix, err := sampler.Grab(ctx, videoPath, at)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to grab frame at %.2fs: %w", at.Seconds(), err)
	}
	return New(index, at, pix)
}
