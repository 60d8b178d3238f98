package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"libretto/internal/catalog"
	"libretto/internal/config"
	"libretto/internal/logging"
	"libretto/internal/metadata"
)

// ErrScanInProgress reports that another process holds the scan lock.
var ErrScanInProgress = errors.New("another scan is already running")

// FileError records one file that failed extraction during a scan.
type FileError struct {
	Path string
	Err  error
}

// Result is the outcome of one scan. NewFiles, UpdatedFiles, UnchangedCount,
// and Errors partition the set of processed files.
type Result struct {
	NewFiles       []catalog.Audiobook
	UpdatedFiles   []catalog.Audiobook
	UnchangedCount int
	Errors         []FileError

	// MissingPaths lists cataloged paths that no longer exist on disk.
	// Rows are reported, never deleted. Empty on a cancelled scan because
	// discovery did not cover the full tree.
	MissingPaths []string

	BatchesCommitted int
	Cancelled        bool
	Duration         time.Duration
}

// Processed returns the total number of classified files.
func (r *Result) Processed() int {
	return len(r.NewFiles) + len(r.UpdatedFiles) + r.UnchangedCount + len(r.Errors)
}

// Scanner coordinates library scans: discovery, parallel metadata
// extraction, classification, and batched catalog writes.
type Scanner struct {
	store      *catalog.Store
	discoverer *Discoverer
	extractor  *metadata.Extractor
	logger     *slog.Logger

	workers   int
	batchSize int

	progress ProgressFunc
	sampler  *logging.ProgressSampler
}

// New builds a scanner from configuration. The store is required; a nil
// logger disables logging.
func New(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Scanner {
	return &Scanner{
		store:      store,
		discoverer: NewDiscoverer(logger),
		extractor:  metadata.NewExtractor(logger),
		logger:     logging.NewComponentLogger(logger, "scanner"),
		workers:    cfg.Scan.Workers,
		batchSize:  cfg.Scan.BatchSize,
		sampler:    logging.NewProgressSampler(5),
	}
}

// SetProgressFunc registers a progress observer. Must be called before Scan.
func (s *Scanner) SetProgressFunc(fn ProgressFunc) {
	s.progress = fn
}

type classification uint8

const (
	classNew classification = iota
	classUpdated
	classUnchanged
	classError
)

type fileResult struct {
	path  string
	class classification
	book  catalog.Audiobook
	err   error
}

// Scan walks lib's root path and reconciles the catalog with what it finds.
// Individual file failures are recorded and never abort the scan; only
// catalog write failures and an unreadable root do. Cancelling ctx stops new
// work, waits for in-flight extractions, and returns a partial result with
// Cancelled set.
func (s *Scanner) Scan(ctx context.Context, lib *catalog.Library) (*Result, error) {
	start := time.Now()

	// Every early return must release the walker, relay, and workers, which
	// all block on this context.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lock := flock.New(s.store.Path() + ".scan.lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !locked {
		return nil, ErrScanInProgress
	}
	defer func() {
		_ = lock.Unlock()
	}()

	snapshot, err := s.store.Fingerprints(ctx, lib.ID)
	if err != nil {
		return nil, fmt.Errorf("load fingerprint snapshot: %w", err)
	}

	s.sampler.Reset()
	var discovered atomic.Int64

	s.logger.Info("scan started",
		logging.String("library", lib.Name),
		logging.String("root", lib.RootPath),
		logging.Int("cataloged", len(snapshot)))
	s.emitTransition(PhaseDiscovering, &discovered, 0, 0, start)

	paths, walkErrs := s.discoverer.Discover(ctx, lib.RootPath)

	// The relay counts discoveries so progress can report totals while
	// workers drain the jobs channel.
	jobs := make(chan string)
	go func() {
		defer close(jobs)
		for path := range paths {
			discovered.Add(1)
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(chan fileResult)
	var wg sync.WaitGroup
	for i := 0; i < s.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					return
				}
				res := s.classify(lib, path, snapshot)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	result := &Result{}
	seen := make(map[string]struct{}, len(snapshot))
	var pending []catalog.Audiobook
	processing := false

	for res := range results {
		if !processing {
			processing = true
			s.emitTransition(PhaseProcessing, &discovered, 0, 0, start)
		}
		seen[res.path] = struct{}{}

		switch res.class {
		case classUnchanged:
			result.UnchangedCount++
		case classError:
			result.Errors = append(result.Errors, FileError{Path: res.path, Err: res.err})
			s.logger.Warn("file skipped",
				logging.String("file", res.path), logging.Error(res.err))
		case classNew:
			result.NewFiles = append(result.NewFiles, res.book)
			pending = append(pending, res.book)
		case classUpdated:
			result.UpdatedFiles = append(result.UpdatedFiles, res.book)
			pending = append(pending, res.book)
		}

		if len(pending) >= s.batchSize && ctx.Err() == nil {
			if err := s.flush(ctx, lib, &pending, result); err != nil {
				return nil, err
			}
		}

		s.emitProcessing(&discovered, result, res.path, start)

		if ctx.Err() != nil {
			break
		}
	}

	// Drain any results still in flight after a cancellation break so the
	// workers can exit.
	go func() {
		for range results {
		}
	}()

	if werr := <-walkErrs; werr != nil && !errors.Is(werr, context.Canceled) {
		return nil, fmt.Errorf("discover %s: %w", lib.RootPath, werr)
	}

	result.Cancelled = ctx.Err() != nil

	if !result.Cancelled {
		s.emitTransition(PhaseFinalizing, &discovered, result.Processed(), len(result.Errors), start)
		if err := s.flush(ctx, lib, &pending, result); err != nil {
			return nil, err
		}
		result.MissingPaths = s.findMissing(snapshot, seen)
	}

	result.Duration = time.Since(start)

	finalPhase := PhaseComplete
	if result.Cancelled {
		finalPhase = PhaseCancelled
	}
	s.emitTransition(finalPhase, &discovered, result.Processed(), len(result.Errors), start)
	s.logger.Info("scan finished",
		logging.String("library", lib.Name),
		logging.String("phase", string(finalPhase)),
		logging.Int("new", len(result.NewFiles)),
		logging.Int("updated", len(result.UpdatedFiles)),
		logging.Int("unchanged", result.UnchangedCount),
		logging.Int("errors", len(result.Errors)),
		logging.Int("missing", len(result.MissingPaths)),
		logging.Duration("elapsed", result.Duration))

	return result, nil
}

func (s *Scanner) workerCount() int {
	if s.workers > 0 {
		return s.workers
	}
	return runtime.NumCPU()
}

func (s *Scanner) classify(lib *catalog.Library, path string, snapshot map[string]string) fileResult {
	info, err := os.Stat(path)
	if err != nil {
		return fileResult{path: path, class: classError, err: fmt.Errorf("stat: %w", err)}
	}
	fp := Fingerprint(info)

	prev, known := snapshot[path]
	if known && prev == fp {
		return fileResult{path: path, class: classUnchanged}
	}

	meta, err := s.extractor.Extract(path)
	if err != nil {
		return fileResult{path: path, class: classError, err: err}
	}

	book := catalog.Audiobook{
		ID:              uuid.NewString(),
		LibraryID:       lib.ID,
		Path:            path,
		Title:           meta.Title,
		Author:          meta.Author,
		Narrator:        meta.Narrator,
		DurationSeconds: meta.Duration.Seconds(),
		SizeBytes:       info.Size(),
		Fingerprint:     fp,
	}

	class := classNew
	if known {
		class = classUpdated
	}
	return fileResult{path: path, class: class, book: book}
}

// Fingerprint derives the change-detection token for a file: size plus
// modification time. Content is never hashed.
func Fingerprint(info fs.FileInfo) string {
	return fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
}

func (s *Scanner) flush(ctx context.Context, lib *catalog.Library, pending *[]catalog.Audiobook, result *Result) error {
	if len(*pending) == 0 {
		return nil
	}
	if err := s.store.BatchUpsert(ctx, lib.ID, *pending); err != nil {
		return fmt.Errorf("persist batch of %d: %w", len(*pending), err)
	}
	result.BatchesCommitted++
	s.logger.Debug("batch committed",
		logging.Int("size", len(*pending)),
		logging.Int("batches", result.BatchesCommitted))
	*pending = nil
	return nil
}

func (s *Scanner) findMissing(snapshot map[string]string, seen map[string]struct{}) []string {
	var missing []string
	for path := range snapshot {
		if _, ok := seen[path]; ok {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, path)
		}
	}
	return missing
}

func (s *Scanner) emitTransition(phase Phase, discovered *atomic.Int64, processed, errCount int, start time.Time) {
	s.sampler.ShouldLog(-1, string(phase))
	if s.progress == nil {
		return
	}
	s.progress(s.snapshot(phase, discovered, processed, errCount, "", start))
}

func (s *Scanner) emitProcessing(discovered *atomic.Int64, result *Result, currentPath string, start time.Time) {
	if s.progress == nil {
		return
	}
	processed := result.Processed()
	total := int(discovered.Load())
	percent := -1.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100
	}
	if !s.sampler.ShouldLog(percent, string(PhaseProcessing)) {
		return
	}
	s.progress(s.snapshot(PhaseProcessing, discovered, processed, len(result.Errors), currentPath, start))
}

func (s *Scanner) snapshot(phase Phase, discovered *atomic.Int64, processed, errCount int, currentPath string, start time.Time) Progress {
	elapsed := time.Since(start)
	fps := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		fps = float64(processed) / secs
	}
	return Progress{
		Phase:          phase,
		Discovered:     int(discovered.Load()),
		Processed:      processed,
		Errors:         errCount,
		CurrentPath:    currentPath,
		Elapsed:        elapsed,
		FilesPerSecond: fps,
	}
}
