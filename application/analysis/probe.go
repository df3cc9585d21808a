package analysis

import (
	"context"
	"fmt"
	"time"

	"clipscan/domain/frame"
)

// probe reads the video duration with the same checks frame.Frames applies
func probe(ctx context.Context, sampler frame.Sampler, videoPath string) (time.Duration, error) {
	duration, err := sampler.Duration(ctx, videoPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read duration: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: %s", frame.ErrNoDuration, videoPath)
	}
	return duration, nil
}
