package tensor

import (
	"fmt"

	"clipscan/domain/frame"
)

// Planes is the number of colour planes kept by the encoder (RGB)
const Planes = 3

// Len is the element count of an encoded frame tensor
const Len = Planes * frame.Size * frame.Size

// Shape is the NCHW shape fed to the model
var Shape = []int64{1, Planes, frame.Size, frame.Size}

// Tensor is a flat, channel-major float32 buffer of shape [1,3,64,64]
type Tensor []float32

// Encode converts a frame into a normalized CHW tensor. Each channel value is
// mapped as (raw/255 - 0.5) * 2 into [-1, 1]; alpha is dropped.
func Encode(f frame.Frame) Tensor {
	t, _ := EncodeRGBA(f.Pix, frame.Size)
	return t
}

// EncodeRGBA is the checked form of Encode for raw interleaved buffers
func EncodeRGBA(pix []byte, size int) (Tensor, error) {
	plane := size * size
	if len(pix) != plane*frame.Channels {
		return nil, fmt.Errorf("rgba buffer has %d bytes, want %d", len(pix), plane*frame.Channels)
	}

	out := make(Tensor, plane*Planes)
	for i := 0; i < plane; i++ {
		px := pix[i*frame.Channels:]
		out[i] = normalize(px[0])
		out[i+plane] = normalize(px[1])
		out[i+2*plane] = normalize(px[2])
	}
	return out, nil
}

func normalize(v byte) float32 {
	return (float32(v)/255.0 - 0.5) * 2
}

// Len returns the number of elements
func (t Tensor) Len() int {
	return len(t)
}
