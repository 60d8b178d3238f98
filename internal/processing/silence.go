package processing

import (
	"math"

	"libretto/internal/audio"
)

// SilenceRegion is a contiguous run of silent frames. EndFrame is inclusive.
type SilenceRegion struct {
	StartFrame int
	EndFrame   int
}

// Frames returns the number of frames covered by the region.
func (r SilenceRegion) Frames() int {
	return r.EndFrame - r.StartFrame + 1
}

// DetectSilence scans buf for runs of quiet frames. A frame is silent when
// the largest absolute sample across its channels falls below the threshold;
// runs at least MinDuration long are reported in ascending order. A silent
// run that reaches the end of the buffer still counts.
func DetectSilence(buf *audio.Buffer, cfg SilenceConfig) ([]SilenceRegion, error) {
	th := float64(cfg.Threshold)
	if th < 0 || math.IsNaN(th) || math.IsInf(th, 0) {
		return nil, ErrInvalidThreshold
	}

	frames := buf.FrameCount()
	if frames == 0 {
		return nil, nil
	}

	minFrames := int(math.Ceil(cfg.MinDuration.Seconds() * float64(buf.SampleRate)))
	if minFrames < 1 {
		minFrames = 1
	}

	channels := int(buf.Channels)
	var regions []SilenceRegion
	runStart := -1

	for f := 0; f < frames; f++ {
		base := f * channels
		var amp float32
		for c := 0; c < channels; c++ {
			s := buf.Data[base+c]
			if s < 0 {
				s = -s
			}
			if s > amp {
				amp = s
			}
		}

		if amp < cfg.Threshold {
			if runStart < 0 {
				runStart = f
			}
			continue
		}
		if runStart >= 0 {
			if f-runStart >= minFrames {
				regions = append(regions, SilenceRegion{StartFrame: runStart, EndFrame: f - 1})
			}
			runStart = -1
		}
	}
	if runStart >= 0 && frames-runStart >= minFrames {
		regions = append(regions, SilenceRegion{StartFrame: runStart, EndFrame: frames - 1})
	}
	return regions, nil
}
