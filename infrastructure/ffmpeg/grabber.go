package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clipscan/domain/frame"
)

// FrameGrabber implements frame.Sampler by shelling out to ffprobe and ffmpeg
type FrameGrabber struct {
	ffmpegPath  string
	ffprobePath string
	size        int
	runner      CommandRunner
}

// GrabberOption is a functional option for configuring FrameGrabber
type GrabberOption func(*FrameGrabber)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) GrabberOption {
	return func(g *FrameGrabber) {
		if path != "" {
			g.ffmpegPath = path
		}
	}
}

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) GrabberOption {
	return func(g *FrameGrabber) {
		if path != "" {
			g.ffprobePath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) GrabberOption {
	return func(g *FrameGrabber) {
		g.runner = runner
	}
}

// NewFrameGrabber creates a new FFmpeg-based frame sampler
func NewFrameGrabber(opts ...GrabberOption) *FrameGrabber {
	g := &FrameGrabber{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		size:        frame.Size,
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Duration implements frame.Sampler. The first video stream's duration is
// used; the container duration, which also covers audio, is the fallback for
// files that do not record a stream duration.
func (g *FrameGrabber) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	raw, err := g.probe(ctx, videoPath, "-select_streams", "v:0", "-show_entries", "stream=duration")
	if err != nil {
		return 0, err
	}
	if raw == "" || raw == "N/A" {
		raw, err = g.probe(ctx, videoPath, "-show_entries", "format=duration")
		if err != nil {
			return 0, err
		}
	}
	if raw == "" || raw == "N/A" {
		return 0, fmt.Errorf("%w: ffprobe reported %q", frame.ErrNoDuration, raw)
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", raw, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

func (g *FrameGrabber) probe(ctx context.Context, videoPath string, query ...string) (string, error) {
	args := append([]string{"-v", "error"}, query...)
	args = append(args, "-of", "default=noprint_wrappers=1:nokey=1", videoPath)

	out, err := g.runner.Output(ctx, g.ffprobePath, args...)
	if err != nil {
		return "", fmt.Errorf("ffprobe failed: %w", err)
	}
	// multi-line output means several streams matched; the first one counts
	raw, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(raw), nil
}

// Grab implements frame.Sampler. The seek is placed before -i so ffmpeg seeks
// the demuxer, then decodes exactly one frame scaled to size x size RGBA.
// A seek past the last decodable frame yields no output; the grab is then
// repeated from one second before the end so a frame near the tail is returned.
func (g *FrameGrabber) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	out, err := g.grab(ctx, videoPath, "-ss", formatSeek(at))
	if err != nil {
		return nil, err
	}

	if len(out) == 0 && at > 0 {
		out, err = g.grab(ctx, videoPath, "-sseof", tailSeek)
		if err != nil {
			return nil, err
		}
	}

	want := g.size * g.size * frame.Channels
	if len(out) < want {
		return nil, fmt.Errorf("%w: ffmpeg returned %d bytes, want %d", frame.ErrShortFrame, len(out), want)
	}

	return out[:want], nil
}

// tailSeek positions the fallback grab this far before the end of the input
const tailSeek = "-1"

func (g *FrameGrabber) grab(ctx context.Context, videoPath string, seek ...string) ([]byte, error) {
	args := append([]string{"-v", "error"}, seek...)
	args = append(args,
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", g.size, g.size),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)

	out, err := g.runner.Output(ctx, g.ffmpegPath, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab failed: %w", err)
	}
	return out, nil
}

// VerifyInstalled checks that ffmpeg and ffprobe are available
func (g *FrameGrabber) VerifyInstalled(ctx context.Context) error {
	if _, err := g.runner.Output(ctx, g.ffmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	if _, err := g.runner.Output(ctx, g.ffprobePath, "-version"); err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

// formatSeek renders a position as seconds with millisecond precision
func formatSeek(at time.Duration) string {
	return strconv.FormatFloat(at.Seconds(), 'f', 3, 64)
}

// Ensure FrameGrabber implements frame.Sampler
var _ frame.Sampler = (*FrameGrabber)(nil)
