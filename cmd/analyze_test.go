package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/domain/tensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChecker map[string]bool

func (c stubChecker) Exists(path string) bool { return c[path] }

// flatSampler serves black frames for a fixed duration
type flatSampler struct {
	duration time.Duration
}

func (s flatSampler) Duration(ctx context.Context, videoPath string) (time.Duration, error) {
	return s.duration, nil
}

func (s flatSampler) Grab(ctx context.Context, videoPath string, at time.Duration) ([]byte, error) {
	return make([]byte, frame.BufferLen), nil
}

// offsetLoader returns a model whose reconstruction is off by the next scripted
// score on every call
func offsetLoader(scores ...float64) func() (anomaly.Reconstructor, error) {
	i := 0
	return func() (anomaly.Reconstructor, error) {
		return anomaly.ReconstructorFunc(func(ctx context.Context, in tensor.Tensor) (tensor.Tensor, error) {
			delta := float32(scores[i%len(scores)])
			i++
			out := make(tensor.Tensor, len(in))
			for j, v := range in {
				out[j] = v + delta
			}
			return out, nil
		}), nil
	}
}

func TestRunAnalyzeWithDependencies(t *testing.T) {
	checker := stubChecker{"clip.mp4": true}

	t.Run("text output for a suspicious clip", func(t *testing.T) {
		var out bytes.Buffer
		outcome, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: 1500 * time.Millisecond},
			offsetLoader(0.01, 0.09, 0.02),
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "clip.mp4", Threshold: 0.08, Rate: 2, Workers: 1},
			&out,
		)

		require.NoError(t, err)
		assert.Equal(t, anomaly.LabelSuspicious, outcome.Label)
		assert.Contains(t, out.String(), "Loading model...")
		assert.Contains(t, out.String(), "SUSPICIOUS: possible deepfake (max anomaly score: 0.0900)")
		assert.Contains(t, out.String(), "Highest score at 00:00:00.500 over 3 frames")
	})

	t.Run("json output for a normal clip", func(t *testing.T) {
		var out bytes.Buffer
		_, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: time.Second},
			offsetLoader(0.01, 0.03),
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "clip.mp4", Threshold: 0.08, Rate: 2, Format: "json"},
			&out,
		)
		require.NoError(t, err)

		var decoded anomaly.Outcome
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, anomaly.LabelNormal, decoded.Label)
		assert.Equal(t, 2, decoded.FramesAnalyzed)
		assert.InDelta(t, 0.03, decoded.MaxScore, 1e-6)
	})

	t.Run("zero threshold falls back to the default", func(t *testing.T) {
		outcome, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: time.Second},
			offsetLoader(0.05, 0.02),
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "clip.mp4"},
			&bytes.Buffer{},
		)

		require.NoError(t, err)
		assert.Equal(t, anomaly.LabelNormal, outcome.Label)
		assert.Equal(t, anomaly.DefaultThreshold, outcome.Threshold)
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: time.Second}, offsetLoader(0.01),
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "absent.mp4", Threshold: 0.08},
			&bytes.Buffer{},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input video does not exist")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: time.Second}, offsetLoader(0.01),
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "clip.mp4", Format: "xml"},
			&bytes.Buffer{},
		)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})

	t.Run("model load failure shows the fixed message", func(t *testing.T) {
		_, err := RunAnalyzeWithDependencies(context.Background(),
			flatSampler{duration: time.Second},
			func() (anomaly.Reconstructor, error) { return nil, errors.New("no such file") },
			checker, zap.NewNop(),
			AnalyzeInput{InputPath: "clip.mp4", Threshold: 0.08},
			&bytes.Buffer{},
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, anomaly.ErrModelLoad)
		assert.Contains(t, err.Error(), ModelLoadMessage)
	})
}

func TestRunScoreFrameWithDependencies(t *testing.T) {
	var out bytes.Buffer
	err := RunScoreFrameWithDependencies(context.Background(),
		flatSampler{duration: time.Second},
		offsetLoader(0.125),
		stubChecker{"face.png": true}, zap.NewNop(),
		"face.png", 0, 0.08, &out,
	)

	require.NoError(t, err)
	assert.Equal(t, "Anomaly score: 0.1250 (suspicious at threshold 0.0800)\n", out.String())
}
