//go:build opencv

package opencv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"clipscan/domain/frame"

	"gocv.io/x/gocv"
)

// Sampler implements frame.Sampler using GoCV's VideoCapture
type Sampler struct {
	mu      sync.Mutex
	size    int
	path    string
	capture *gocv.VideoCapture
}

// SamplerOption is a functional option for configuring Sampler
type SamplerOption func(*Sampler)

// WithFrameSize overrides the output edge length
func WithFrameSize(size int) SamplerOption {
	return func(s *Sampler) {
		if size > 0 {
			s.size = size
		}
	}
}

// NewSampler creates a new OpenCV-backed sampler
func NewSampler(opts ...SamplerOption) *Sampler {
	s := &Sampler{size: frame.Size}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether the binary was built with OpenCV support
func Available() bool {
	return true
}

// open returns a capture for videoPath, reusing the previous one when the
// path is unchanged. Caller must hold s.mu.
func (s *Sampler) open(videoPath string) (*gocv.VideoCapture, error) {
	if s.capture != nil && s.path == videoPath {
		return s.capture, nil
	}
	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}

	vc, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", videoPath, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open video %s", videoPath)
	}

	s.capture = vc
	s.path = videoPath
	return vc, nil
}

// Duration implements frame.Sampler from frame count and frame rate
func (s *Sampler) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vc, err := s.open(videoPath)
	if err != nil {
		return 0, err
	}

	fps := vc.Get(gocv.VideoCaptureFPS)
	count := vc.Get(gocv.VideoCaptureFrameCount)
	if fps <= 0 || count <= 0 {
		return 0, fmt.Errorf("%w: fps=%.2f frames=%.0f", frame.ErrNoDuration, fps, count)
	}

	return time.Duration(count / fps * float64(time.Second)), nil
}

// Grab implements frame.Sampler. OpenCV decodes BGR; the frame is resized to
// size x size and converted to RGBA before leaving the adapter.
func (s *Sampler) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vc, err := s.open(videoPath)
	if err != nil {
		return nil, err
	}

	vc.Set(gocv.VideoCapturePosMsec, float64(at.Milliseconds()))

	img := gocv.NewMat()
	defer img.Close()
	if ok := vc.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("no frame decoded at %dms", at.Milliseconds())
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(img, &resized, image.Pt(s.size, s.size), 0, 0, gocv.InterpolationArea)

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(resized, &rgba, gocv.ColorBGRToRGBA)

	return rgba.ToBytes(), nil
}

// Close releases the open capture, if any
func (s *Sampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	s.path = ""
	return err
}

// ErrOpenCVUnavailable is returned by the stub build
var ErrOpenCVUnavailable = errors.New("opencv sampler not available")

// Ensure Sampler implements frame.Sampler
var _ frame.Sampler = (*Sampler)(nil)
