package tensor

import (
	"math"
	"testing"

	"clipscan/domain/frame"
)

func filledFrame(r, g, b, a byte) frame.Frame {
	pix := make([]byte, frame.BufferLen)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, a
	}
	return frame.Frame{Pix: pix}
}

func TestEncode_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		value byte
		want  float32
	}{
		{name: "all zero maps to -1", value: 0, want: -1},
		{name: "all 255 maps to 1", value: 255, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(filledFrame(tt.value, tt.value, tt.value, tt.value))

			if len(got) != Len {
				t.Fatalf("Encode() len = %d, want %d", len(got), Len)
			}
			for i, v := range got {
				if v != tt.want {
					t.Fatalf("Encode()[%d] = %f, want %f", i, v, tt.want)
				}
			}
		})
	}
}

func TestEncode_PlanarLayout(t *testing.T) {
	got := Encode(filledFrame(255, 0, 51, 128))
	plane := frame.Size * frame.Size

	checks := []struct {
		name  string
		index int
		want  float32
	}{
		{"red plane start", 0, 1},
		{"red plane end", plane - 1, 1},
		{"green plane start", plane, -1},
		{"green plane end", 2*plane - 1, -1},
		{"blue plane start", 2 * plane, -0.6},
		{"blue plane end", 3*plane - 1, -0.6},
	}

	for _, c := range checks {
		t.Run(c.name, func(t *testing.T) {
			if math.Abs(float64(got[c.index]-c.want)) > 1e-6 {
				t.Errorf("Encode()[%d] = %f, want %f", c.index, got[c.index], c.want)
			}
		})
	}
}

func TestEncode_AlphaIgnored(t *testing.T) {
	opaque := Encode(filledFrame(10, 20, 30, 255))
	transparent := Encode(filledFrame(10, 20, 30, 0))

	for i := range opaque {
		if opaque[i] != transparent[i] {
			t.Fatalf("alpha changed element %d: %f vs %f", i, opaque[i], transparent[i])
		}
	}
}

func TestEncode_PixelOrder(t *testing.T) {
	pix := make([]byte, frame.BufferLen)
	// second pixel is pure white, everything else black
	pix[4], pix[5], pix[6] = 255, 255, 255

	got := Encode(frame.Frame{Pix: pix})
	plane := frame.Size * frame.Size

	for _, i := range []int{1, plane + 1, 2*plane + 1} {
		if got[i] != 1 {
			t.Errorf("Encode()[%d] = %f, want 1", i, got[i])
		}
	}
	for _, i := range []int{0, 2, plane, 2 * plane} {
		if got[i] != -1 {
			t.Errorf("Encode()[%d] = %f, want -1", i, got[i])
		}
	}
}

func TestEncodeRGBA_WrongLength(t *testing.T) {
	if _, err := EncodeRGBA(make([]byte, 10), frame.Size); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestEncodeRGBA_OtherSize(t *testing.T) {
	got, err := EncodeRGBA(make([]byte, 2*2*4), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 12 {
		t.Errorf("Len() = %d, want 12", got.Len())
	}
}
