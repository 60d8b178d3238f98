package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		return errors.New("paths.database_path must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must be >= 0")
	}
	if c.Scan.BatchSize <= 0 {
		return errors.New("scan.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	p := c.Processing
	if p.TargetSampleRate < 0 {
		return errors.New("processing.target_sample_rate must be >= 0")
	}
	if p.TargetChannels < 0 {
		return errors.New("processing.target_channels must be >= 0")
	}
	switch p.MixAlgorithm {
	case "average", "sum":
	default:
		return fmt.Errorf("processing.mix_algorithm must be \"average\" or \"sum\", got %q", p.MixAlgorithm)
	}
	switch p.NormalizeMetric {
	case "peak", "rms":
	default:
		return fmt.Errorf("processing.normalize_metric must be \"peak\" or \"rms\", got %q", p.NormalizeMetric)
	}
	if p.Normalize {
		if p.NormalizeTarget <= 0 || math.IsInf(p.NormalizeTarget, 0) || math.IsNaN(p.NormalizeTarget) {
			return errors.New("processing.normalize_target must be a positive finite value")
		}
	}
	if p.DetectSilence {
		if p.SilenceThreshold < 0 || p.SilenceThreshold > 1 {
			return errors.New("processing.silence_threshold must be between 0 and 1")
		}
		if p.SilenceMinDurationMS <= 0 {
			return errors.New("processing.silence_min_duration_ms must be positive")
		}
	}
	return nil
}
