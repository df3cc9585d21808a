package cmd

import (
	"fmt"
	"os"

	"clipscan/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgErr   error
)

var rootCmd = &cobra.Command{
	Use:   "clipscan",
	Short: "Flag suspicious video clips with a reconstruction autoencoder",
	Long: `clipscan samples frames from a video, runs each one through a pre-trained
anomaly-detection autoencoder and flags the clip as suspicious when the
reconstruction error of any frame exceeds the configured threshold.

  - Sample frames at a fixed rate (default 2 per second)
  - Score each frame by mean absolute reconstruction error
  - Classify the clip by its worst frame

Example:
  clipscan analyze --input interview.mp4`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Commands that need config will check and error appropriately
		cfg = nil
		return
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}

// GetConfig returns the loaded configuration
func GetConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("configuration not loaded: %w", cfgErr)
		}
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}
