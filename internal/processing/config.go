package processing

import (
	"math"
	"time"
)

// MixAlgorithm selects how source channels combine during a downmix.
type MixAlgorithm uint8

const (
	// MixAverage takes the arithmetic mean of the contributing channels.
	MixAverage MixAlgorithm = iota
	// MixSum adds the contributing channels and clamps to the valid range.
	MixSum
)

// String returns the config-file spelling of the algorithm.
func (a MixAlgorithm) String() string {
	switch a {
	case MixSum:
		return "sum"
	default:
		return "average"
	}
}

// NormalizationMetric selects which loudness measurement drives the gain.
type NormalizationMetric uint8

const (
	// MetricPeak scales so the loudest sample lands on the target.
	MetricPeak NormalizationMetric = iota
	// MetricRMS scales so the root-mean-square level lands on the target.
	MetricRMS
)

func (m NormalizationMetric) String() string {
	switch m {
	case MetricRMS:
		return "rms"
	default:
		return "peak"
	}
}

// MixerConfig configures the channel mixing stage.
type MixerConfig struct {
	TargetChannels uint16
	Algorithm      MixAlgorithm
}

// NormalizationConfig configures the normalization stage. Target is a linear
// amplitude (1.0 = full scale), not decibels.
type NormalizationConfig struct {
	Metric NormalizationMetric
	Target float32
}

// SilenceConfig configures silence detection. Threshold is a linear
// amplitude; frames whose peak falls below it count as silent.
type SilenceConfig struct {
	Threshold   float32
	MinDuration time.Duration
}

// Config describes one pipeline run. Nil sub-configs skip their stage.
type Config struct {
	TargetSampleRate uint32 // zero skips resampling
	Mixer            *MixerConfig
	Normalize        *NormalizationConfig
	Silence          *SilenceConfig
}

// Validate checks every present sub-config before any audio is touched.
func (c *Config) Validate() error {
	if c.Mixer != nil && c.Mixer.TargetChannels == 0 {
		return &StageError{Stage: StageMix, Err: ErrUnsupportedChannelLayout}
	}
	if c.Normalize != nil {
		t := float64(c.Normalize.Target)
		if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
			return &StageError{Stage: StageNormalize, Err: ErrInvalidTarget}
		}
	}
	if c.Silence != nil {
		th := float64(c.Silence.Threshold)
		if th < 0 || math.IsNaN(th) || math.IsInf(th, 0) {
			return &StageError{Stage: StageSilence, Err: ErrInvalidThreshold}
		}
	}
	return nil
}

// IsNoop reports whether every stage is disabled.
func (c *Config) IsNoop() bool {
	return c.TargetSampleRate == 0 && c.Mixer == nil && c.Normalize == nil && c.Silence == nil
}
