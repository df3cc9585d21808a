package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipscan/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPrompter answers prompts from fixed queues
type mockPrompter struct {
	inputs   []string
	confirms []bool
	selects  []string
}

func (m *mockPrompter) Input(message string, defaultValue string) (string, error) {
	if len(m.inputs) == 0 {
		return defaultValue, nil
	}
	v := m.inputs[0]
	m.inputs = m.inputs[1:]
	return v, nil
}

func (m *mockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if len(m.confirms) == 0 {
		return defaultValue, nil
	}
	v := m.confirms[0]
	m.confirms = m.confirms[1:]
	return v, nil
}

func (m *mockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if len(m.selects) == 0 {
		return defaultValue, nil
	}
	v := m.selects[0]
	m.selects = m.selects[1:]
	return v, nil
}

type cancelPrompter struct{ mockPrompter }

func (c *cancelPrompter) Input(message string, defaultValue string) (string, error) {
	return "", errors.New("interrupt")
}

func TestRunSetupWithPrompter(t *testing.T) {
	t.Run("writes a new config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config", "config.yaml")
		prompter := &mockPrompter{
			inputs:  []string{"/models/ganomaly.onnx", "/usr/lib/libonnxruntime.so", "4", "2", "0.1"},
			selects: []string{config.BackendOpenCV},
		}
		var out bytes.Buffer

		require.NoError(t, RunSetupWithPrompter(prompter, path, &out))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/models/ganomaly.onnx", cfg.Model.Path)
		assert.Equal(t, "/usr/lib/libonnxruntime.so", cfg.Model.RuntimeLibrary)
		assert.Equal(t, config.BackendOpenCV, cfg.Sampling.Backend)
		assert.Equal(t, 4.0, cfg.Sampling.Rate)
		assert.Equal(t, 2, cfg.Sampling.Workers)
		assert.Equal(t, 0.1, cfg.Scoring.Threshold)
		assert.Contains(t, out.String(), "Configuration saved to")
	})

	t.Run("defaults accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")

		require.NoError(t, RunSetupWithPrompter(&mockPrompter{}, path, &bytes.Buffer{}))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.Default().Scoring.Threshold, cfg.Scoring.Threshold)
		assert.Equal(t, config.BackendFFmpeg, cfg.Sampling.Backend)
	})

	t.Run("existing config kept when overwrite declined", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scoring:\n  threshold: 0.3\n"), 0644))
		var out bytes.Buffer

		require.NoError(t, RunSetupWithPrompter(&mockPrompter{confirms: []bool{false}}, path, &out))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "scoring:\n  threshold: 0.3\n", string(data))
		assert.Contains(t, out.String(), "Setup cancelled.")
	})

	t.Run("invalid rate", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		prompter := &mockPrompter{inputs: []string{"m.onnx", "", "fast"}}

		err := RunSetupWithPrompter(prompter, path, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid number")
	})

	t.Run("cancelled prompt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")

		err := RunSetupWithPrompter(&cancelPrompter{}, path, &bytes.Buffer{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prompt cancelled")
	})
}
