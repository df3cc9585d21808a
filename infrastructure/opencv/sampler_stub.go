//go:build !opencv

package opencv

import (
	"context"
	"errors"
	"time"

	"clipscan/domain/frame"
)

// ErrOpenCVUnavailable is returned when the binary was built without OpenCV
var ErrOpenCVUnavailable = errors.New("opencv sampler not available: build with '-tags=opencv' and install OpenCV/GoCV")

// Sampler is a stub when GoCV/OpenCV is not available
type Sampler struct{}

// SamplerOption is a functional option for configuring Sampler
type SamplerOption func(*Sampler)

// WithFrameSize is a no-op in stub mode
func WithFrameSize(size int) SamplerOption {
	return func(s *Sampler) {}
}

// NewSampler creates a stub sampler (requires building with -tags=opencv)
func NewSampler(opts ...SamplerOption) *Sampler {
	return &Sampler{}
}

// Available reports whether the binary was built with OpenCV support
func Available() bool {
	return false
}

// Duration returns an error indicating OpenCV is not available
func (s *Sampler) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	return 0, ErrOpenCVUnavailable
}

// Grab returns an error indicating OpenCV is not available
func (s *Sampler) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	return nil, ErrOpenCVUnavailable
}

// Close is a no-op in stub mode
func (s *Sampler) Close() error {
	return nil
}

// Ensure Sampler implements frame.Sampler
var _ frame.Sampler = (*Sampler)(nil)
