package processing

import (
	"time"

	"libretto/internal/audio"
)

// StageReport records one executed stage for diagnostics.
type StageReport struct {
	Stage     Stage
	Elapsed   time.Duration
	InFrames  int
	OutFrames int
}

// Output carries the transformed buffer plus the non-buffer results produced
// along the way.
type Output struct {
	Buffer  *audio.Buffer
	Silence []SilenceRegion
	Stages  []StageReport
}

// Pipeline applies the configured stages to buffers in a fixed order:
// resample, mix, normalize, detect silence. A Pipeline is immutable and safe
// for concurrent use.
type Pipeline struct {
	cfg Config
}

// NewPipeline validates the configuration and returns a ready pipeline.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process runs the enabled stages over buf. The input buffer is never
// mutated; when every stage is disabled the input is returned unchanged. The
// first failing stage aborts the run with a stage-tagged error.
func (p *Pipeline) Process(buf *audio.Buffer) (*Output, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	out := &Output{Buffer: buf}
	cur := buf

	if p.cfg.TargetSampleRate != 0 {
		start := time.Now()
		in := cur.FrameCount()
		next, err := Resample(cur, p.cfg.TargetSampleRate)
		if err != nil {
			return nil, &StageError{Stage: StageResample, Err: err}
		}
		out.Stages = append(out.Stages, StageReport{StageResample, time.Since(start), in, next.FrameCount()})
		cur = next
	}

	if p.cfg.Mixer != nil {
		start := time.Now()
		in := cur.FrameCount()
		next, err := MixChannels(cur, p.cfg.Mixer.TargetChannels, p.cfg.Mixer.Algorithm)
		if err != nil {
			return nil, &StageError{Stage: StageMix, Err: err}
		}
		out.Stages = append(out.Stages, StageReport{StageMix, time.Since(start), in, next.FrameCount()})
		cur = next
	}

	if p.cfg.Normalize != nil {
		start := time.Now()
		in := cur.FrameCount()
		next, err := Normalize(cur, *p.cfg.Normalize)
		if err != nil {
			return nil, &StageError{Stage: StageNormalize, Err: err}
		}
		out.Stages = append(out.Stages, StageReport{StageNormalize, time.Since(start), in, next.FrameCount()})
		cur = next
	}

	if p.cfg.Silence != nil {
		start := time.Now()
		regions, err := DetectSilence(cur, *p.cfg.Silence)
		if err != nil {
			return nil, &StageError{Stage: StageSilence, Err: err}
		}
		out.Stages = append(out.Stages, StageReport{StageSilence, time.Since(start), cur.FrameCount(), cur.FrameCount()})
		out.Silence = regions
	}

	out.Buffer = cur
	return out, nil
}
