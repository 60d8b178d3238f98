package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeProcessing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = defaultDatabasePath
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.Workers < 0 {
		c.Scan.Workers = 0
	}
	if c.Scan.BatchSize <= 0 {
		c.Scan.BatchSize = defaultScanBatchSize
	}
}

func (c *Config) normalizeProcessing() {
	c.Processing.MixAlgorithm = strings.ToLower(strings.TrimSpace(c.Processing.MixAlgorithm))
	if c.Processing.MixAlgorithm == "" {
		c.Processing.MixAlgorithm = defaultMixAlgorithm
	}
	c.Processing.NormalizeMetric = strings.ToLower(strings.TrimSpace(c.Processing.NormalizeMetric))
	if c.Processing.NormalizeMetric == "" {
		c.Processing.NormalizeMetric = defaultNormalizeMetric
	}
	if c.Processing.NormalizeTarget == 0 {
		c.Processing.NormalizeTarget = defaultNormalizeTarget
	}
	if c.Processing.SilenceThreshold == 0 {
		c.Processing.SilenceThreshold = defaultSilenceThreshold
	}
	if c.Processing.SilenceMinDurationMS <= 0 {
		c.Processing.SilenceMinDurationMS = defaultSilenceMinDurationMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
