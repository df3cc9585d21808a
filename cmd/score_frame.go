package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"clipscan/application/analysis"
	"clipscan/domain/anomaly"
	"clipscan/domain/frame"
	"clipscan/infrastructure/filesystem"
	"clipscan/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scoreImagePath string
	scoreAt        string
)

var scoreFrameCmd = &cobra.Command{
	Use:   "score-frame",
	Short: "Score a single image or video frame",
	Long: `Run one image (or the frame of a video at --at seconds) through the model
and print its anomaly score. Useful for calibrating the threshold.

Example:
  clipscan score-frame --image face.png
  clipscan score-frame --image interview.mp4 --at 12.5
  clipscan score-frame --image interview.mp4 --at 00:01:30`,
	RunE: runScoreFrame,
}

func init() {
	rootCmd.AddCommand(scoreFrameCmd)
	scoreFrameCmd.Flags().StringVar(&scoreImagePath, "image", "", "Path to an image or video (required)")
	scoreFrameCmd.Flags().StringVar(&scoreAt, "at", "", "Position when --image is a video (seconds or HH:MM:SS)")
	scoreFrameCmd.MarkFlagRequired("image")
}

func runScoreFrame(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	at, err := frame.ParsePosition(scoreAt)
	if err != nil {
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

	loader, release := modelLoader(cfg)
	defer release()

	return RunScoreFrameWithDependencies(ctx, sampler, loader, filesystem.NewChecker(), logger,
		scoreImagePath, at, cfg.Scoring.Threshold, os.Stdout)
}

// RunScoreFrameWithDependencies scores one frame with injected dependencies (for testing)
func RunScoreFrameWithDependencies(
	ctx context.Context,
	sampler frame.Sampler,
	loader analysis.Loader,
	fileChecker frame.FileChecker,
	logger *zap.Logger,
	path string,
	at time.Duration,
	threshold float64,
	output io.Writer,
) error {
	if !fileChecker.Exists(path) {
		return fmt.Errorf("input does not exist: %s", path)
	}

	session, err := analysis.Open(sampler, loader, analysis.WithLogger(logger), analysis.WithThreshold(threshold))
	if err != nil {
		return fmt.Errorf("%s: %w", ModelLoadMessage, err)
	}

	f, err := frame.GrabAt(ctx, sampler, path, 0, at)
	if err != nil {
		return err
	}

	score, err := session.ScoreFrame(ctx, f)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	fmt.Fprintf(output, "Anomaly score: %.4f (%s at threshold %.4f)\n", score, anomaly.Classify(score, threshold), threshold)
	return nil
}
