package frame

import (
	"errors"
	"fmt"
	"time"
)

// Size is the edge length in pixels of every sampled frame
const Size = 64

// Channels is the number of interleaved channels in a frame buffer (RGBA)
const Channels = 4

// BufferLen is the byte length of a Size x Size RGBA buffer
const BufferLen = Size * Size * Channels

// DefaultRate is the default number of frames sampled per second of video
const DefaultRate = 2.0

var (
	// ErrShortFrame is returned when a decoded frame holds fewer bytes than BufferLen
	ErrShortFrame = errors.New("frame buffer too short")

	// ErrNoDuration is returned when a video reports no usable duration
	ErrNoDuration = errors.New("video has no duration")
)

// Frame is a fixed-size RGBA pixel buffer sampled at one timestamp
type Frame struct {
	// Index is the position of the frame in the sampling schedule
	Index int

	// At is the video position the frame was sampled from
	At time.Duration

	// Pix holds Size*Size RGBA pixels, row-major, 4 bytes per pixel
	Pix []byte
}

// New creates a Frame, validating the pixel buffer length
func New(index int, at time.Duration, pix []byte) (Frame, error) {
	if len(pix) < BufferLen {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", ErrShortFrame, len(pix), BufferLen)
	}
	return Frame{
		Index: index,
		At:    at,
		Pix:   pix[:BufferLen],
	}, nil
}

// Seconds returns the frame position in fractional seconds
func (f Frame) Seconds() float64 {
	return f.At.Seconds()
}
