package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"clipscan/application/analysis"
	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/infrastructure/config"
	"clipscan/infrastructure/ffmpeg"
	"clipscan/infrastructure/filesystem"
	"clipscan/infrastructure/logging"
	"clipscan/infrastructure/metrics"
	"clipscan/infrastructure/onnx"
	"clipscan/infrastructure/opencv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ModelLoadMessage is shown when the model cannot be opened
const ModelLoadMessage = "model failed to load; check model.path and model.runtime_library in the config"

var (
	analyzeInputPath string
	analyzeThreshold float64
	analyzeRate      float64
	analyzeWorkers   int
	analyzeFormat    string
	analyzeModelPath string
	analyzeBackend   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a video and classify it as normal or suspicious",
	Long: `Analyze a video file frame by frame:
1. Sample frames at the configured rate (seek, grab, scale to 64x64)
2. Normalize each frame into a [1,3,64,64] tensor
3. Reconstruct it with the autoencoder model
4. Score the frame by mean absolute reconstruction error
5. Classify the clip by its highest frame score

The clip is reported as suspicious when the maximum score is strictly
greater than the threshold (default 0.08).

Example:
  clipscan analyze --input interview.mp4

  clipscan analyze \
    --input interview.mp4 \
    --threshold 0.1 \
    --rate 4 \
    --workers 4 \
    --format json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeInputPath, "input", "", "Path to the video file (required)")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 0, "Override the classification threshold")
	analyzeCmd.Flags().Float64Var(&analyzeRate, "rate", 0, "Override frames sampled per second")
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Override number of frames analysed concurrently")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "Output format: text or json")
	analyzeCmd.Flags().StringVar(&analyzeModelPath, "model", "", "Override the model path")
	analyzeCmd.Flags().StringVar(&analyzeBackend, "sampler", "", "Override the sampling backend (ffmpeg or opencv)")
	analyzeCmd.MarkFlagRequired("input")
}

// AnalyzeInput contains the input parameters for the analyze command
type AnalyzeInput struct {
	InputPath string
	Threshold float64 // 0 uses anomaly.DefaultThreshold
	Rate      float64 // 0 uses frame.DefaultRate
	Workers   int
	Format    string
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	applyAnalyzeOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()

	sampler, err := newSampler(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := sampler.(io.Closer); ok {
		defer closer.Close()
	}

	if cfg.Metrics.Address != "" {
		srv := metrics.StartServer(cfg.Metrics.Address, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	loader, release := modelLoader(cfg)
	defer release()

	_, err = RunAnalyzeWithDependencies(
		ctx,
		sampler,
		loader,
		filesystem.NewChecker(),
		logger,
		AnalyzeInput{
			InputPath: analyzeInputPath,
			Threshold: cfg.Scoring.Threshold,
			Rate:      cfg.Sampling.Rate,
			Workers:   cfg.Sampling.Workers,
			Format:    analyzeFormat,
		},
		os.Stdout,
	)
	return err
}

// applyAnalyzeOverrides copies explicitly set flags over the loaded config
func applyAnalyzeOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Scoring.Threshold = analyzeThreshold
	}
	if flags.Changed("rate") {
		cfg.Sampling.Rate = analyzeRate
	}
	if flags.Changed("workers") {
		cfg.Sampling.Workers = analyzeWorkers
	}
	if flags.Changed("model") {
		cfg.Model.Path = analyzeModelPath
	}
	if flags.Changed("sampler") {
		cfg.Sampling.Backend = analyzeBackend
	}
}

// modelLoader returns a loader opening the configured ONNX model and a
// release func closing whatever it opened
func modelLoader(cfg *config.Config) (analysis.Loader, func()) {
	var model *onnx.Model
	load := func() (anomaly.Reconstructor, error) {
		m, err := onnx.Open(onnx.Options{
			ModelPath:   cfg.Model.Path,
			LibraryPath: cfg.Model.RuntimeLibrary,
			InputName:   cfg.Model.InputName,
			OutputName:  cfg.Model.OutputName,
		})
		if err != nil {
			return nil, err
		}
		model = m
		return m, nil
	}
	release := func() {
		if model != nil {
			model.Close()
		}
	}
	return load, release
}

// newSampler builds the configured sampling backend
func newSampler(ctx context.Context, cfg *config.Config) (frame.Sampler, error) {
	switch cfg.Sampling.Backend {
	case config.BackendOpenCV:
		if !opencv.Available() {
			return nil, opencv.ErrOpenCVUnavailable
		}
		return opencv.NewSampler(opencv.WithFrameSize(cfg.Sampling.FrameSize)), nil
	default:
		grabber := ffmpeg.NewFrameGrabber(
			ffmpeg.WithFFmpegPath(cfg.Sampling.FFmpegPath),
			ffmpeg.WithFFprobePath(cfg.Sampling.FFprobePath),
		)
		verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := grabber.VerifyInstalled(verifyCtx); err != nil {
			return nil, fmt.Errorf("ffmpeg verification failed: %w", err)
		}
		return grabber, nil
	}
}

// RunAnalyzeWithDependencies runs the analyze command with injected dependencies (for testing)
func RunAnalyzeWithDependencies(
	ctx context.Context,
	sampler frame.Sampler,
	loader analysis.Loader,
	fileChecker frame.FileChecker,
	logger *zap.Logger,
	input AnalyzeInput,
	output io.Writer,
) (anomaly.Outcome, error) {
	if input.InputPath == "" {
		return anomaly.Outcome{}, fmt.Errorf("input video path is required")
	}
	if !fileChecker.Exists(input.InputPath) {
		return anomaly.Outcome{}, fmt.Errorf("input video does not exist: %s", input.InputPath)
	}

	format := input.Format
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		return anomaly.Outcome{}, fmt.Errorf("unknown output format %q: expected text or json", format)
	}

	// JSON output must stay machine-readable, so progress is dropped
	progress := output
	if format == "json" {
		progress = io.Discard
	}

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithOutput(progress),
		analysis.WithStrategy(analysis.StrategyFor(input.Workers)),
	}
	if input.Threshold > 0 {
		opts = append(opts, analysis.WithThreshold(input.Threshold))
	}
	if input.Rate > 0 {
		opts = append(opts, analysis.WithRate(input.Rate))
	}

	session, err := analysis.Open(sampler, loader, opts...)
	if err != nil {
		if errors.Is(err, anomaly.ErrModelLoad) {
			return anomaly.Outcome{}, fmt.Errorf("%s: %w", ModelLoadMessage, err)
		}
		return anomaly.Outcome{}, err
	}

	outcome, err := session.Analyze(ctx, input.InputPath)
	if err != nil {
		return anomaly.Outcome{}, fmt.Errorf("analysis failed: %w", err)
	}

	if err := writeOutcome(output, format, outcome); err != nil {
		return outcome, err
	}
	return outcome, nil
}

func writeOutcome(w io.Writer, format string, outcome anomaly.Outcome) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}
	if _, err := fmt.Fprintln(w, outcome.String()); err != nil {
		return err
	}
	if outcome.FramesAnalyzed == 0 {
		return nil
	}
	_, err := fmt.Fprintf(w, "Highest score at %s over %d frames\n", frame.FormatPosition(outcome.WorstFrameAt), outcome.FramesAnalyzed)
	return err
}
