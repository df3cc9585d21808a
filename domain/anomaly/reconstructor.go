package anomaly

import (
	"context"

	"clipscan/domain/tensor"
)

// Reconstructor defines the port for the external model runtime. Given an
// encoded frame it returns the model's reconstruction of identical length.
type Reconstructor interface {
	Reconstruct(ctx context.Context, input tensor.Tensor) (tensor.Tensor, error)
}

// ReconstructorFunc adapts a plain function to Reconstructor
type ReconstructorFunc func(ctx context.Context, input tensor.Tensor) (tensor.Tensor, error)

// Reconstruct calls f
func (f ReconstructorFunc) Reconstruct(ctx context.Context, input tensor.Tensor) (tensor.Tensor, error) {
	return f(ctx, input)
}
