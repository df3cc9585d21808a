package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"clipscan/domain/anomaly"
	"clipscan/domain/tensor"

	ort "github.com/yalue/onnxruntime_go"
)

// Options configures how the model is opened
type Options struct {
	// ModelPath is the .onnx graph file
	ModelPath string

	// LibraryPath points at the onnxruntime shared library; empty uses the
	// runtime's platform default
	LibraryPath string

	// InputName and OutputName select graph endpoints; empty resolves the
	// first input and first output declared by the graph
	InputName  string
	OutputName string
}

// Model implements anomaly.Reconstructor on top of an ONNX Runtime session.
// The input and output tensors are preallocated and reused, so Run calls are
// serialised.
type Model struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputName  string
	outputName string
}

var (
	envMu   sync.Mutex
	envRefs int
)

// acquireEnvironment initialises the process-wide runtime on first use
func acquireEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 && !ort.IsInitialized() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("failed to initialise onnxruntime: %w", err)
		}
	}
	envRefs++
	return nil
}

// releaseEnvironment tears the runtime down when the last model closes
func releaseEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if envRefs == 0 {
		return nil
	}
	envRefs--
	if envRefs == 0 && ort.IsInitialized() {
		return ort.DestroyEnvironment()
	}
	return nil
}

// Open loads the model graph and prepares a session. Any failure is wrapped
// in anomaly.ErrModelLoad.
func Open(opts Options) (*Model, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("%w: model path is required", anomaly.ErrModelLoad)
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %w", anomaly.ErrModelLoad, err)
	}

	if err := acquireEnvironment(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: %w", anomaly.ErrModelLoad, err)
	}

	m, err := open(opts)
	if err != nil {
		_ = releaseEnvironment()
		return nil, fmt.Errorf("%w: %w", anomaly.ErrModelLoad, err)
	}
	return m, nil
}

func open(opts Options) (*Model, error) {
	inputName, outputName := opts.InputName, opts.OutputName
	if inputName == "" || outputName == "" {
		inputs, outputs, err := ort.GetInputOutputInfo(opts.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read graph endpoints: %w", err)
		}
		inputName, outputName, err = resolveNames(inputName, outputName, infoNames(inputs), infoNames(outputs))
		if err != nil {
			return nil, err
		}
	}

	shape := ort.NewShape(tensor.Shape...)
	input, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(opts.ModelPath,
		[]string{inputName}, []string{outputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Model{
		session:    session,
		input:      input,
		output:     output,
		inputName:  inputName,
		outputName: outputName,
	}, nil
}

func infoNames(infos []ort.InputOutputInfo) []string {
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}

// resolveNames fills unset endpoint names with the first declared ones
func resolveNames(inputName, outputName string, inputs, outputs []string) (string, string, error) {
	if inputName == "" {
		if len(inputs) == 0 {
			return "", "", errors.New("graph declares no inputs")
		}
		inputName = inputs[0]
	}
	if outputName == "" {
		if len(outputs) == 0 {
			return "", "", errors.New("graph declares no outputs")
		}
		outputName = outputs[0]
	}
	return inputName, outputName, nil
}

// Reconstruct implements anomaly.Reconstructor
func (m *Model) Reconstruct(ctx context.Context, in tensor.Tensor) (tensor.Tensor, error) {
	if len(in) != tensor.Len {
		return nil, fmt.Errorf("%w: model expects %d values, got %d", anomaly.ErrShapeMismatch, tensor.Len, len(in))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, errors.New("model is closed")
	}

	copy(m.input.GetData(), in)
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := make(tensor.Tensor, tensor.Len)
	copy(out, m.output.GetData())
	return out, nil
}

// InputName returns the graph input the model feeds
func (m *Model) InputName() string {
	return m.inputName
}

// OutputName returns the graph output the model reads
func (m *Model) OutputName() string {
	return m.outputName
}

// Close releases the session and its tensors
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil
	}

	err := errors.Join(
		m.session.Destroy(),
		m.input.Destroy(),
		m.output.Destroy(),
	)
	m.session = nil
	return errors.Join(err, releaseEnvironment())
}

// Ensure Model implements anomaly.Reconstructor
var _ anomaly.Reconstructor = (*Model)(nil)
