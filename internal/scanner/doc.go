// Package scanner walks a library root, extracts metadata from audio files
// with a bounded worker pool, and reconciles the results against the catalog.
// All catalog writes happen on the coordinating goroutine in batched
// transactions; workers only read files.
package scanner
