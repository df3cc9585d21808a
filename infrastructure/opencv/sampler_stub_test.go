//go:build !opencv

package opencv

import (
	"context"
	"errors"
	"testing"
)

func TestStubSampler(t *testing.T) {
	s := NewSampler(WithFrameSize(32))

	if Available() {
		t.Error("expected stub build to report unavailable")
	}
	if _, err := s.Duration(context.Background(), "clip.mp4"); !errors.Is(err, ErrOpenCVUnavailable) {
		t.Errorf("Duration() error = %v, want ErrOpenCVUnavailable", err)
	}
	if _, err := s.Grab(context.Background(), "clip.mp4", 0); !errors.Is(err, ErrOpenCVUnavailable) {
		t.Errorf("Grab() error = %v, want ErrOpenCVUnavailable", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
