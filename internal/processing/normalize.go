package processing

import (
	"math"

	"libretto/internal/audio"
)

// Normalize scales buf so its configured metric lands on the target level.
// The buffer shape is unchanged; only amplitudes move. A silent buffer is
// returned untouched rather than dividing by zero.
func Normalize(buf *audio.Buffer, cfg NormalizationConfig) (*audio.Buffer, error) {
	t := float64(cfg.Target)
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return nil, ErrInvalidTarget
	}
	if len(buf.Data) == 0 {
		return buf, nil
	}

	var current float32
	switch cfg.Metric {
	case MetricRMS:
		current = rmsLevel(buf.Data)
	default:
		current = peakLevel(buf.Data)
	}
	if current == 0 {
		return buf, nil
	}

	gain := cfg.Target / current
	out := audio.NewBuffer(buf.Format, buf.SampleRate, buf.Channels, buf.FrameCount())
	for i, s := range buf.Data {
		out.Data[i] = clampSample(s * gain)
	}
	return out, nil
}

func peakLevel(data []float32) float32 {
	var peak float32
	for _, s := range data {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

func rmsLevel(data []float32) float32 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, s := range data {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(data))))
}
