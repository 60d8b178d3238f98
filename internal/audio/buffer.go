package audio

import (
	"errors"
	"fmt"
	"time"
)

// SampleFormat identifies the storage format a buffer was decoded from.
// Samples are always held as float32 in memory; the format records the
// precision to restore when the buffer is written back out.
type SampleFormat uint8

const (
	FormatInt16 SampleFormat = iota
	FormatInt24
	FormatFloat32
)

// String returns a short label for the sample format.
func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatInt24:
		return "int24"
	case FormatFloat32:
		return "float32"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Buffer holds decoded PCM audio as interleaved float32 samples in the range
// [-1, 1]. Data length is always a whole number of frames.
type Buffer struct {
	Data       []float32
	Format     SampleFormat
	SampleRate uint32
	Channels   uint16
}

// NewBuffer allocates a buffer for the given shape with zeroed samples.
func NewBuffer(format SampleFormat, sampleRate uint32, channels uint16, frames int) *Buffer {
	return &Buffer{
		Data:       make([]float32, frames*int(channels)),
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// FrameCount returns the number of whole frames in the buffer.
func (b *Buffer) FrameCount() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Data) / int(b.Channels)
}

// Duration returns the play time of the buffer at its sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	frames := b.FrameCount()
	return time.Duration(float64(frames) / float64(b.SampleRate) * float64(time.Second))
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return &Buffer{
		Data:       data,
		Format:     b.Format,
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
	}
}

// Validate reports whether the buffer satisfies its shape invariants.
func (b *Buffer) Validate() error {
	if b == nil {
		return errors.New("buffer is nil")
	}
	if b.Channels == 0 {
		return errors.New("buffer has zero channels")
	}
	if b.SampleRate == 0 {
		return errors.New("buffer has zero sample rate")
	}
	if len(b.Data)%int(b.Channels) != 0 {
		return fmt.Errorf("sample count %d is not a multiple of channel count %d", len(b.Data), b.Channels)
	}
	return nil
}

// Frame returns the samples of frame i as a subslice of Data. The slice
// aliases the buffer; callers must not retain it across mutations.
func (b *Buffer) Frame(i int) []float32 {
	start := i * int(b.Channels)
	return b.Data[start : start+int(b.Channels)]
}
