package processing

import (
	"libretto/internal/audio"
)

// MixChannels converts buf to the target channel layout. Frame count, sample
// rate and format are preserved; only the channel interleave changes. The
// conversion paths are many-to-mono (downmix), mono-to-many (duplicate), and
// generic N-to-M (downmix to mono, then duplicate).
func MixChannels(buf *audio.Buffer, targetChannels uint16, algo MixAlgorithm) (*audio.Buffer, error) {
	if targetChannels == 0 {
		return nil, ErrUnsupportedChannelLayout
	}
	if buf.Channels == targetChannels {
		return buf, nil
	}

	switch {
	case targetChannels == 1:
		return downmixToMono(buf, algo), nil
	case buf.Channels == 1:
		return duplicateMono(buf, targetChannels), nil
	default:
		mono := downmixToMono(buf, algo)
		return duplicateMono(mono, targetChannels), nil
	}
}

func downmixToMono(buf *audio.Buffer, algo MixAlgorithm) *audio.Buffer {
	channels := int(buf.Channels)
	frames := buf.FrameCount()
	out := audio.NewBuffer(buf.Format, buf.SampleRate, 1, frames)

	inv := float32(1) / float32(channels)
	for f := 0; f < frames; f++ {
		base := f * channels
		var sum float32
		for c := 0; c < channels; c++ {
			sum += buf.Data[base+c]
		}
		switch algo {
		case MixSum:
			out.Data[f] = clampSample(sum)
		default:
			out.Data[f] = sum * inv
		}
	}
	return out
}

func duplicateMono(buf *audio.Buffer, targetChannels uint16) *audio.Buffer {
	frames := buf.FrameCount()
	out := audio.NewBuffer(buf.Format, buf.SampleRate, targetChannels, frames)
	tc := int(targetChannels)
	for f := 0; f < frames; f++ {
		s := buf.Data[f]
		base := f * tc
		for c := 0; c < tc; c++ {
			out.Data[base+c] = s
		}
	}
	return out
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
