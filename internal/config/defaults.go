package config

const (
	defaultLibraryDir           = "~/audiobooks"
	defaultDatabasePath         = "~/.local/share/libretto/libretto.db"
	defaultLogDir               = "~/.local/share/libretto/logs"
	defaultOutputDir            = "~/.local/share/libretto/processed"
	defaultScanBatchSize        = 100
	defaultTargetSampleRate     = 44100
	defaultTargetChannels       = 1
	defaultMixAlgorithm         = "average"
	defaultNormalizeMetric      = "peak"
	defaultNormalizeTarget      = 0.9
	defaultSilenceThreshold     = 0.01
	defaultSilenceMinDurationMS = 1000
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:   defaultLibraryDir,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
			OutputDir:    defaultOutputDir,
		},
		Scan: Scan{
			Workers:   0,
			BatchSize: defaultScanBatchSize,
		},
		Processing: Processing{
			TargetSampleRate:     defaultTargetSampleRate,
			TargetChannels:       defaultTargetChannels,
			MixAlgorithm:         defaultMixAlgorithm,
			Normalize:            true,
			NormalizeMetric:      defaultNormalizeMetric,
			NormalizeTarget:      defaultNormalizeTarget,
			DetectSilence:        true,
			SilenceThreshold:     defaultSilenceThreshold,
			SilenceMinDurationMS: defaultSilenceMinDurationMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
