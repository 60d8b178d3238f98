package main

import (
	"fmt"
	"time"

	"libretto/internal/config"
	"libretto/internal/processing"
)

// pipelineConfig maps the processing section of the config file onto a
// pipeline configuration. Disabled stages come back nil.
func pipelineConfig(cfg *config.Config) processing.Config {
	p := cfg.Processing

	out := processing.Config{
		TargetSampleRate: uint32(p.TargetSampleRate),
	}
	if p.TargetChannels > 0 {
		algo := processing.MixAverage
		if p.MixAlgorithm == "sum" {
			algo = processing.MixSum
		}
		out.Mixer = &processing.MixerConfig{
			TargetChannels: uint16(p.TargetChannels),
			Algorithm:      algo,
		}
	}
	if p.Normalize {
		metric := processing.MetricPeak
		if p.NormalizeMetric == "rms" {
			metric = processing.MetricRMS
		}
		out.Normalize = &processing.NormalizationConfig{
			Metric: metric,
			Target: float32(p.NormalizeTarget),
		}
	}
	if p.DetectSilence {
		out.Silence = &processing.SilenceConfig{
			Threshold:   float32(p.SilenceThreshold),
			MinDuration: time.Duration(p.SilenceMinDurationMS) * time.Millisecond,
		}
	}
	return out
}

func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
