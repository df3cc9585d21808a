package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/domain/tensor"
	"clipscan/infrastructure/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrBusy is returned when Analyze is called while another analysis runs
var ErrBusy = errors.New("session is already analysing a video")

// Loader opens the reconstruction model
type Loader func() (anomaly.Reconstructor, error)

// Session owns a loaded model and analyses videos with it, one at a time
type Session struct {
	sampler       frame.Sampler
	reconstructor anomaly.Reconstructor
	strategy      Strategy
	rate          float64
	threshold     float64
	logger        *zap.Logger
	output        io.Writer
	tracer        trace.Tracer
	onState       func(State)

	mu    sync.Mutex
	state State
}

// Option is a functional option for configuring a Session
type Option func(*Session)

// WithRate sets the number of frames sampled per second
func WithRate(rate float64) Option {
	return func(s *Session) {
		s.rate = rate
	}
}

// WithThreshold sets the score above which a clip is suspicious
func WithThreshold(threshold float64) Option {
	return func(s *Session) {
		s.threshold = threshold
	}
}

// WithStrategy sets how frames are driven through the model
func WithStrategy(strategy Strategy) Option {
	return func(s *Session) {
		s.strategy = strategy
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOutput sets where human-readable progress is written
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		s.output = w
	}
}

// WithStateHook registers a callback invoked on every state change
func WithStateHook(fn func(State)) Option {
	return func(s *Session) {
		s.onState = fn
	}
}

func newSession(sampler frame.Sampler, opts ...Option) *Session {
	s := &Session{
		sampler:   sampler,
		strategy:  Sequential{},
		rate:      frame.DefaultRate,
		threshold: anomaly.DefaultThreshold,
		logger:    zap.NewNop(),
		output:    io.Discard,
		tracer:    otel.Tracer("clipscan/analysis"),
		state:     StateLoading,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sampler = tracedSampler{Sampler: sampler, tracer: s.tracer}
	return s
}

// NewSession creates a ready session around an already loaded model
func NewSession(sampler frame.Sampler, reconstructor anomaly.Reconstructor, opts ...Option) *Session {
	s := newSession(sampler, opts...)
	s.reconstructor = reconstructor
	s.setState(StateReady)
	return s
}

// Open creates a session and loads the model through load. A load failure is
// fatal: the session is not returned and the error wraps anomaly.ErrModelLoad.
func Open(sampler frame.Sampler, load Loader, opts ...Option) (*Session, error) {
	s := newSession(sampler, opts...)
	if s.onState != nil {
		s.onState(StateLoading)
	}

	fmt.Fprintf(s.output, "Loading model...\n")
	start := time.Now()
	reconstructor, err := load()
	if err != nil {
		s.setState(StateFailed)
		s.logger.Error("model load failed", zap.Error(err))
		if !errors.Is(err, anomaly.ErrModelLoad) {
			err = fmt.Errorf("%w: %w", anomaly.ErrModelLoad, err)
		}
		return nil, err
	}
	s.logger.Info("model loaded", zap.Duration("elapsed", time.Since(start)))

	s.reconstructor = reconstructor
	s.setState(StateReady)
	return s, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	hook := s.onState
	s.mu.Unlock()

	if hook != nil {
		hook(next)
	}
}

// begin moves an idle session into sampling
func (s *Session) begin() error {
	s.mu.Lock()
	if s.state.Busy() || s.state == StateLoading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateSampling
	hook := s.onState
	s.mu.Unlock()

	if hook != nil {
		hook(StateSampling)
	}
	return nil
}

// Analyze samples videoPath, scores every frame and classifies the clip by
// its maximum frame score. Any frame failure aborts the analysis.
func (s *Session) Analyze(ctx context.Context, videoPath string) (anomaly.Outcome, error) {
	if err := s.begin(); err != nil {
		return anomaly.Outcome{}, err
	}

	id := uuid.NewString()
	log := s.logger.With(zap.String("session_id", id), zap.String("video", videoPath))

	ctx, span := s.tracer.Start(ctx, "analyze", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("video.path", videoPath),
	))
	defer span.End()

	fmt.Fprintf(s.output, "Analyzing %s...\n", filepath.Base(videoPath))
	log.Info("analysis started", zap.Float64("rate", s.rate), zap.Float64("threshold", s.threshold))

	start := time.Now()
	tracker := &anomaly.Tracker{}

	// frames overlap under a concurrent strategy, so the session stays in
	// SAMPLING until the last one is scored
	_, stepped := s.strategy.(Sequential)

	err := s.strategy.Each(ctx, s.sampler, videoPath, s.rate, func(ctx context.Context, f frame.Frame) error {
		if stepped {
			s.setState(StateScoring)
		}
		score, err := s.scoreFrame(ctx, f)
		if err != nil {
			return fmt.Errorf("frame %d at %.2fs: %w", f.Index, f.Seconds(), err)
		}

		tracker.Observe(score, f.At)
		metrics.FramesAnalyzedTotal.Inc()
		metrics.FrameScore.Observe(score)
		log.Debug("frame scored",
			zap.Int("index", f.Index),
			zap.Float64("at_seconds", f.Seconds()),
			zap.Float64("score", score),
			zap.Float64("running_max", tracker.Max()),
		)

		if stepped {
			s.setState(StateSampling)
		}
		return nil
	})
	if err != nil {
		s.setState(StateFailed)
		span.RecordError(err)
		metrics.FailuresTotal.WithLabelValues("analyze").Inc()
		log.Error("analysis failed", zap.Int("frames_scored", tracker.Frames()), zap.Error(err))
		return anomaly.Outcome{}, err
	}

	outcome := tracker.Outcome(s.threshold)
	outcome.SessionID = id

	metrics.VerdictsTotal.WithLabelValues(string(outcome.Label)).Inc()
	metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("outcome.label", string(outcome.Label)),
		attribute.Float64("outcome.max_score", outcome.MaxScore),
	)
	log.Info("analysis finished",
		zap.String("label", string(outcome.Label)),
		zap.Float64("max_score", outcome.MaxScore),
		zap.Int("frames", outcome.FramesAnalyzed),
		zap.Duration("elapsed", time.Since(start)),
	)
	fmt.Fprintf(s.output, "Analyzed %d frames in %s\n", outcome.FramesAnalyzed, time.Since(start).Round(time.Millisecond))

	s.setState(StateDone)
	return outcome, nil
}

// ScoreFrame runs a single frame through the model without touching the
// session state
func (s *Session) ScoreFrame(ctx context.Context, f frame.Frame) (float64, error) {
	return s.scoreFrame(ctx, f)
}

func (s *Session) scoreFrame(ctx context.Context, f frame.Frame) (float64, error) {
	ctx, span := s.tracer.Start(ctx, "infer", trace.WithAttributes(
		attribute.Int("frame.index", f.Index),
	))
	defer span.End()

	input := tensor.Encode(f)

	start := time.Now()
	reconstructed, err := s.reconstructor.Reconstruct(ctx, input)
	metrics.StageDuration.WithLabelValues("infer").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	score, err := anomaly.Score(input, reconstructed)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Float64("frame.score", score))
	return score, nil
}
