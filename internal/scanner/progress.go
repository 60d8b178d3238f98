package scanner

import "time"

// Phase is a stage of the scan state machine.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDiscovering Phase = "discovering"
	PhaseProcessing  Phase = "processing"
	PhaseFinalizing  Phase = "finalizing"
	PhaseComplete    Phase = "complete"
	PhaseCancelled   Phase = "cancelled"
)

// Progress is a point-in-time snapshot of a running scan. Events are emitted
// on every phase transition and at a throttled rate while processing.
type Progress struct {
	Phase          Phase
	Discovered     int
	Processed      int
	Errors         int
	CurrentPath    string
	Elapsed        time.Duration
	FilesPerSecond float64
}

// ProgressFunc observes scan progress. Callbacks run on the coordinating
// goroutine; observers must not block.
type ProgressFunc func(Progress)
