package processing

import (
	"math"

	"libretto/internal/audio"
)

// Resample converts buf to the target sample rate using linear interpolation.
// Channel count and sample format are preserved. When the target equals the
// source rate the input buffer is returned as-is.
func Resample(buf *audio.Buffer, targetRate uint32) (*audio.Buffer, error) {
	if targetRate == 0 {
		return nil, ErrInvalidSampleRate
	}
	if buf.SampleRate == targetRate {
		return buf, nil
	}

	channels := int(buf.Channels)
	srcFrames := buf.FrameCount()
	outFrames := int(math.Round(float64(srcFrames) * float64(targetRate) / float64(buf.SampleRate)))

	out := audio.NewBuffer(buf.Format, targetRate, buf.Channels, outFrames)
	if srcFrames == 0 {
		return out, nil
	}

	// Position arithmetic in float64 so long buffers keep frame accuracy.
	step := float64(buf.SampleRate) / float64(targetRate)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		lo := int(pos)
		if lo > srcFrames-1 {
			lo = srcFrames - 1
		}
		hi := lo + 1
		if hi > srcFrames-1 {
			hi = srcFrames - 1
		}
		frac := float32(pos - float64(lo))

		loBase := lo * channels
		hiBase := hi * channels
		outBase := i * channels
		for c := 0; c < channels; c++ {
			a := buf.Data[loBase+c]
			b := buf.Data[hiBase+c]
			out.Data[outBase+c] = a + (b-a)*frac
		}
	}
	return out, nil
}
