package anomaly

import (
	"fmt"
	"math"

	"clipscan/domain/tensor"
)

// Score returns the mean absolute difference between input and reconstructed.
// Empty tensors score 0.
func Score(input, reconstructed tensor.Tensor) (float64, error) {
	if len(input) != len(reconstructed) {
		return 0, fmt.Errorf("%w: input has %d values, reconstruction has %d", ErrShapeMismatch, len(input), len(reconstructed))
	}
	if len(input) == 0 {
		return 0, nil
	}

	var sum float64
	for i := range input {
		sum += math.Abs(float64(input[i]) - float64(reconstructed[i]))
	}
	return sum / float64(len(input)), nil
}
