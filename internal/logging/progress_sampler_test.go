package logging_test

import (
	"testing"

	"libretto/internal/logging"
)

func TestProgressSamplerEmitsOnBucketBoundaries(t *testing.T) {
	sampler := logging.NewProgressSampler(10)

	if !sampler.ShouldLog(0, "processing") {
		t.Fatal("expected first event to emit")
	}
	if sampler.ShouldLog(3, "processing") {
		t.Fatal("expected mid-bucket event to be suppressed")
	}
	if !sampler.ShouldLog(12, "processing") {
		t.Fatal("expected bucket crossing to emit")
	}
	if sampler.ShouldLog(14, "processing") {
		t.Fatal("expected repeat bucket to be suppressed")
	}
	if !sampler.ShouldLog(100, "processing") {
		t.Fatal("expected completion to emit")
	}
}

func TestProgressSamplerEmitsOnPhaseChange(t *testing.T) {
	sampler := logging.NewProgressSampler(5)

	if !sampler.ShouldLog(50, "discovering") {
		t.Fatal("expected first event to emit")
	}
	if !sampler.ShouldLog(50, "processing") {
		t.Fatal("expected phase change to emit")
	}
	if sampler.ShouldLog(50, "processing") {
		t.Fatal("expected repeat to be suppressed")
	}

	sampler.Reset()
	if !sampler.ShouldLog(50, "processing") {
		t.Fatal("expected emit after reset")
	}
}

func TestProgressSamplerNilReceiverAlwaysLogs(t *testing.T) {
	var sampler *logging.ProgressSampler
	if !sampler.ShouldLog(10, "processing") {
		t.Fatal("expected nil sampler to always log")
	}
}
