package anomaly

import "errors"

var (
	// ErrShapeMismatch is returned when input and reconstruction differ in length
	ErrShapeMismatch = errors.New("tensor shape mismatch")

	// ErrModelLoad wraps any failure to open the inference model
	ErrModelLoad = errors.New("model failed to load")
)
