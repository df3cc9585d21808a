package onnx

import (
	"context"
	"path/filepath"
	"testing"

	"clipscan/domain/anomaly"
	"clipscan/domain/tensor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingModel(t *testing.T) {
	_, err := Open(Options{ModelPath: filepath.Join(t.TempDir(), "ganomaly.onnx")})
	require.Error(t, err)
	assert.ErrorIs(t, err, anomaly.ErrModelLoad)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, anomaly.ErrModelLoad)
	assert.Contains(t, err.Error(), "model path is required")
}

func TestResolveNames(t *testing.T) {
	tests := []struct {
		name       string
		inputName  string
		outputName string
		inputs     []string
		outputs    []string
		wantIn     string
		wantOut    string
		wantErr    string
	}{
		{
			name:    "first declared endpoints",
			inputs:  []string{"input.1", "mask"},
			outputs: []string{"recon", "latent"},
			wantIn:  "input.1",
			wantOut: "recon",
		},
		{
			name:       "configured names win",
			inputName:  "images",
			outputName: "fake",
			inputs:     []string{"input.1"},
			outputs:    []string{"recon"},
			wantIn:     "images",
			wantOut:    "fake",
		},
		{
			name:      "only output resolved",
			inputName: "images",
			outputs:   []string{"recon"},
			wantIn:    "images",
			wantOut:   "recon",
		},
		{
			name:    "no inputs",
			outputs: []string{"recon"},
			wantErr: "no inputs",
		},
		{
			name:    "no outputs",
			inputs:  []string{"input.1"},
			wantErr: "no outputs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := resolveNames(tt.inputName, tt.outputName, tt.inputs, tt.outputs)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestReconstruct_RejectsWrongShape(t *testing.T) {
	m := &Model{}
	_, err := m.Reconstruct(context.Background(), make(tensor.Tensor, 10))
	assert.ErrorIs(t, err, anomaly.ErrShapeMismatch)
}

func TestReconstruct_Closed(t *testing.T) {
	m := &Model{}
	_, err := m.Reconstruct(context.Background(), make(tensor.Tensor, tensor.Len))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestClose_Idempotent(t *testing.T) {
	m := &Model{}
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
