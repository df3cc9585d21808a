package config

import (
	"errors"
	"fmt"
	"os"

	"clipscan/domain/anomaly"
	"clipscan/domain/frame"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Sampling backends
const (
	BackendFFmpeg = "ffmpeg"
	BackendOpenCV = "opencv"
)

// Config represents the complete application configuration
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Sampling SamplingConfig `yaml:"sampling"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ModelConfig locates the reconstruction model and its runtime
type ModelConfig struct {
	Path           string `yaml:"path" env:"CLIPSCAN_MODEL_PATH"`
	RuntimeLibrary string `yaml:"runtime_library" env:"CLIPSCAN_ONNXRUNTIME_LIB"`
	InputName      string `yaml:"input_name" env:"CLIPSCAN_MODEL_INPUT"`
	OutputName     string `yaml:"output_name" env:"CLIPSCAN_MODEL_OUTPUT"`
}

// SamplingConfig controls how frames are pulled from the video
type SamplingConfig struct {
	Rate        float64 `yaml:"rate" env:"CLIPSCAN_SAMPLE_RATE"`
	FrameSize   int     `yaml:"frame_size" env:"CLIPSCAN_FRAME_SIZE"`
	Backend     string  `yaml:"backend" env:"CLIPSCAN_SAMPLER"`
	Workers     int     `yaml:"workers" env:"CLIPSCAN_WORKERS"`
	FFmpegPath  string  `yaml:"ffmpeg_path" env:"CLIPSCAN_FFMPEG"`
	FFprobePath string  `yaml:"ffprobe_path" env:"CLIPSCAN_FFPROBE"`
}

// ScoringConfig contains classification settings
type ScoringConfig struct {
	Threshold float64 `yaml:"threshold" env:"CLIPSCAN_THRESHOLD"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level string `yaml:"level" env:"CLIPSCAN_LOG_LEVEL"`
}

// MetricsConfig controls the optional Prometheus endpoint
type MetricsConfig struct {
	Address string `yaml:"address" env:"CLIPSCAN_METRICS_ADDR"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path: "models/ganomaly.onnx",
		},
		Sampling: SamplingConfig{
			Rate:        frame.DefaultRate,
			FrameSize:   frame.Size,
			Backend:     BackendFFmpeg,
			Workers:     1,
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
		},
		Scoring: ScoringConfig{
			Threshold: anomaly.DefaultThreshold,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies CLIPSCAN_*
// environment overrides. A missing file is not an error: defaults and
// environment still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can drive an analysis
func (c *Config) Validate() error {
	if c.Sampling.Rate <= 0 {
		return fmt.Errorf("sampling.rate must be positive, got %v", c.Sampling.Rate)
	}
	if c.Sampling.FrameSize != frame.Size {
		return fmt.Errorf("sampling.frame_size must be %d to match the model, got %d", frame.Size, c.Sampling.FrameSize)
	}
	if c.Sampling.Workers < 1 {
		return fmt.Errorf("sampling.workers must be at least 1, got %d", c.Sampling.Workers)
	}
	switch c.Sampling.Backend {
	case BackendFFmpeg, BackendOpenCV:
	default:
		return fmt.Errorf("sampling.backend must be %q or %q, got %q", BackendFFmpeg, BackendOpenCV, c.Sampling.Backend)
	}
	if c.Scoring.Threshold <= 0 {
		return fmt.Errorf("scoring.threshold must be positive, got %v", c.Scoring.Threshold)
	}
	return nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
