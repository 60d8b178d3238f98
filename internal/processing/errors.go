package processing

import (
	"errors"
	"fmt"
)

// Stage parameter errors. These are always configuration mistakes, never
// data-dependent failures, so they are deterministic for a given config.
var (
	ErrInvalidSampleRate        = errors.New("target sample rate must be positive")
	ErrUnsupportedChannelLayout = errors.New("target channel count must be positive")
	ErrInvalidTarget            = errors.New("normalization target must be positive and finite")
	ErrInvalidThreshold         = errors.New("silence threshold must be non-negative and finite")
)

// Stage identifies a pipeline stage in reports and errors.
type Stage string

const (
	StageResample  Stage = "resample"
	StageMix       Stage = "mix"
	StageNormalize Stage = "normalize"
	StageSilence   Stage = "silence"
)

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
