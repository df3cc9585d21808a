package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"clipscan/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through locating the model, choosing how frames are
sampled and setting the classification threshold.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, output io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to clipscan setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptModel(prompter, cfg); err != nil {
		return err
	}
	if err := promptSampling(prompter, cfg); err != nil {
		return err
	}
	if err := promptScoring(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptModel(prompter Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Where is the ONNX model?", cfg.Model.Path)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path == "" {
		return fmt.Errorf("model path is required")
	}
	cfg.Model.Path = path

	lib, err := prompter.Input("Path to libonnxruntime (leave empty for the system default):", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Model.RuntimeLibrary = lib

	return nil
}

func promptSampling(prompter Prompter, cfg *config.Config) error {
	backend, err := prompter.Select("How should frames be decoded?",
		[]string{config.BackendFFmpeg, config.BackendOpenCV}, cfg.Sampling.Backend)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Sampling.Backend = backend

	rate, err := promptFloat(prompter, "Frames to sample per second:", cfg.Sampling.Rate)
	if err != nil {
		return err
	}
	cfg.Sampling.Rate = rate

	workers, err := prompter.Input("Frames to analyse concurrently:", strconv.Itoa(cfg.Sampling.Workers))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(workers)
	if err != nil {
		return fmt.Errorf("invalid worker count %q: %w", workers, err)
	}
	cfg.Sampling.Workers = n

	return nil
}

func promptScoring(prompter Prompter, cfg *config.Config) error {
	threshold, err := promptFloat(prompter, "Anomaly threshold:", cfg.Scoring.Threshold)
	if err != nil {
		return err
	}
	cfg.Scoring.Threshold = threshold
	return nil
}

func promptFloat(prompter Prompter, message string, defaultValue float64) (float64, error) {
	raw, err := prompter.Input(message, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	if err != nil {
		return 0, fmt.Errorf("prompt cancelled")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return v, nil
}
