package scanner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"libretto/internal/catalog"
	"libretto/internal/config"
	"libretto/internal/logging"
	"libretto/internal/scanner"
	"libretto/internal/testsupport"
)

type scanFixture struct {
	cfg   *config.Config
	store *catalog.Store
	lib   *catalog.Library
	sc    *scanner.Scanner
}

func newScanFixture(t *testing.T, opts ...testsupport.ConfigOption) *scanFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)

	lib, err := store.CreateLibrary(context.Background(), "main", cfg.Paths.LibraryDir)
	if err != nil {
		t.Fatalf("create library: %v", err)
	}
	return &scanFixture{
		cfg:   cfg,
		store: store,
		lib:   lib,
		sc:    scanner.New(cfg, store, logging.NewNop()),
	}
}

func (f *scanFixture) addBook(t *testing.T, name string, frames int) string {
	t.Helper()
	return testsupport.WriteSineWAV(t, f.cfg.Paths.LibraryDir, name, 8000, frames)
}

func TestScanCatalogsNewFiles(t *testing.T) {
	f := newScanFixture(t)
	f.addBook(t, "one.wav", 800)
	f.addBook(t, "two.wav", 900)
	f.addBook(t, "three.wav", 1000)
	if err := os.WriteFile(filepath.Join(f.cfg.Paths.LibraryDir, "cover.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.NewFiles) != 3 || result.UnchangedCount != 0 || len(result.UpdatedFiles) != 0 || len(result.Errors) != 0 {
		t.Fatalf("unexpected classification: %+v", result)
	}
	if result.Processed() != 3 {
		t.Fatalf("expected 3 processed, got %d", result.Processed())
	}
	if result.Cancelled {
		t.Fatal("scan should not be cancelled")
	}
	if result.BatchesCommitted < 1 {
		t.Fatal("expected at least one committed batch")
	}
	if len(result.MissingPaths) != 0 {
		t.Fatalf("unexpected missing paths: %v", result.MissingPaths)
	}

	books, err := f.store.Audiobooks(context.Background(), f.lib.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 3 {
		t.Fatalf("expected 3 cataloged audiobooks, got %d", len(books))
	}
	for _, b := range books {
		if b.Title == "" || b.Fingerprint == "" || b.SizeBytes == 0 {
			t.Fatalf("incomplete catalog row: %+v", b)
		}
	}
}

func TestScanSecondPassIsUnchanged(t *testing.T) {
	f := newScanFixture(t)
	f.addBook(t, "one.wav", 800)
	f.addBook(t, "two.wav", 900)

	if _, err := f.sc.Scan(context.Background(), f.lib); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if result.UnchangedCount != 2 || len(result.NewFiles) != 0 || len(result.UpdatedFiles) != 0 {
		t.Fatalf("expected all unchanged, got %+v", result)
	}
	if result.BatchesCommitted != 0 {
		t.Fatalf("unchanged scan should commit nothing, got %d batches", result.BatchesCommitted)
	}
}

func TestScanDetectsModifiedFile(t *testing.T) {
	f := newScanFixture(t)
	path := f.addBook(t, "one.wav", 800)
	f.addBook(t, "two.wav", 900)

	if _, err := f.sc.Scan(context.Background(), f.lib); err != nil {
		t.Fatal(err)
	}

	// Rewriting with a different length changes the size half of the
	// fingerprint even when mtime granularity is coarse.
	testsupport.WriteWAV(t, path, testsupport.SineBuffer(8000, 1, 1600, 440, 0.5))

	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.UpdatedFiles) != 1 || result.UnchangedCount != 1 || len(result.NewFiles) != 0 {
		t.Fatalf("expected one update and one unchanged, got %+v", result)
	}
	if result.UpdatedFiles[0].Path != path {
		t.Fatalf("wrong file flagged as updated: %s", result.UpdatedFiles[0].Path)
	}

	books, err := f.store.Audiobooks(context.Background(), f.lib.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 2 {
		t.Fatalf("update must not add rows, got %d", len(books))
	}
}

func TestScanReportsMissingWithoutDeleting(t *testing.T) {
	f := newScanFixture(t)
	keep := f.addBook(t, "keep.wav", 800)
	gone := f.addBook(t, "gone.wav", 900)

	if _, err := f.sc.Scan(context.Background(), f.lib); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}

	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.MissingPaths) != 1 || result.MissingPaths[0] != gone {
		t.Fatalf("expected %s missing, got %v", gone, result.MissingPaths)
	}
	if result.UnchangedCount != 1 {
		t.Fatalf("expected %s unchanged, got %+v", keep, result)
	}

	paths, err := f.store.ListPaths(context.Background(), f.lib.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 {
		t.Fatalf("missing files must stay cataloged, got %v", paths)
	}
}

func TestScanRecordsFileErrors(t *testing.T) {
	f := newScanFixture(t)
	f.addBook(t, "good.wav", 800)
	bad := filepath.Join(f.cfg.Paths.LibraryDir, "bad.wav")
	if err := os.WriteFile(bad, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Path != bad {
		t.Fatalf("expected one error for %s, got %+v", bad, result.Errors)
	}
	if len(result.NewFiles) != 1 {
		t.Fatalf("good file should still be cataloged, got %+v", result)
	}

	books, err := f.store.Audiobooks(context.Background(), f.lib.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 cataloged audiobook, got %d", len(books))
	}
}

func TestScanMissingRootFails(t *testing.T) {
	f := newScanFixture(t)
	lib, err := f.store.CreateLibrary(context.Background(), "broken", filepath.Join(f.cfg.Paths.LibraryDir, "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.sc.Scan(context.Background(), lib); err == nil {
		t.Fatal("expected error for unreadable root")
	}
}

func TestScanCancellation(t *testing.T) {
	f := newScanFixture(t, testsupport.WithWorkers(1))
	for i := 0; i < 10; i++ {
		f.addBook(t, string(rune('a'+i))+".wav", 800)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.sc.SetProgressFunc(func(p scanner.Progress) {
		if p.Phase == scanner.PhaseProcessing {
			cancel()
		}
	})

	result, err := f.sc.Scan(ctx, f.lib)
	if err != nil {
		t.Fatalf("cancelled scan must return a partial result, got error: %v", err)
	}
	if !result.Cancelled {
		t.Fatal("expected Cancelled flag")
	}
	if len(result.MissingPaths) != 0 {
		t.Fatalf("cancelled scan must not report missing paths, got %v", result.MissingPaths)
	}
	if result.Processed() > 10 {
		t.Fatalf("processed more files than exist: %d", result.Processed())
	}
}

func TestScanProgressPhaseOrdering(t *testing.T) {
	f := newScanFixture(t)
	f.addBook(t, "one.wav", 800)
	f.addBook(t, "two.wav", 900)

	var phases []scanner.Phase
	f.sc.SetProgressFunc(func(p scanner.Progress) {
		if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
			phases = append(phases, p.Phase)
		}
	})

	if _, err := f.sc.Scan(context.Background(), f.lib); err != nil {
		t.Fatal(err)
	}
	if len(phases) < 3 {
		t.Fatalf("expected at least discovery, processing, and completion, got %v", phases)
	}
	if phases[0] != scanner.PhaseDiscovering {
		t.Fatalf("expected scan to start discovering, got %v", phases)
	}
	if phases[len(phases)-1] != scanner.PhaseComplete {
		t.Fatalf("expected scan to end complete, got %v", phases)
	}
	order := map[scanner.Phase]int{
		scanner.PhaseDiscovering: 0,
		scanner.PhaseProcessing:  1,
		scanner.PhaseFinalizing:  2,
		scanner.PhaseComplete:    3,
	}
	for i := 1; i < len(phases); i++ {
		if order[phases[i]] < order[phases[i-1]] {
			t.Fatalf("phases out of order: %v", phases)
		}
	}
}

func TestScanCommitsInBatches(t *testing.T) {
	f := newScanFixture(t, testsupport.WithBatchSize(1))
	f.addBook(t, "one.wav", 800)
	f.addBook(t, "two.wav", 900)
	f.addBook(t, "three.wav", 1000)

	result, err := f.sc.Scan(context.Background(), f.lib)
	if err != nil {
		t.Fatal(err)
	}
	if result.BatchesCommitted != 3 {
		t.Fatalf("expected 3 single-file batches, got %d", result.BatchesCommitted)
	}
}

func TestScanRefusesConcurrentScan(t *testing.T) {
	f := newScanFixture(t)
	f.addBook(t, "one.wav", 800)

	lock := flock.New(f.store.Path() + ".scan.lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("could not pre-acquire lock: %v", err)
	}
	defer lock.Unlock()

	if _, err := f.sc.Scan(context.Background(), f.lib); !errors.Is(err, scanner.ErrScanInProgress) {
		t.Fatalf("expected ErrScanInProgress, got %v", err)
	}
}

func TestScanStoreFailureReleasesWorkers(t *testing.T) {
	f := newScanFixture(t, testsupport.WithWorkers(1), testsupport.WithBatchSize(1))
	for i := 0; i < 5; i++ {
		f.addBook(t, string(rune('a'+i))+".wav", 800)
	}

	// A library that was never inserted makes the first batch flush fail on
	// the audiobooks foreign key.
	ghost := &catalog.Library{ID: "no-such-library", Name: "ghost", RootPath: f.cfg.Paths.LibraryDir}

	before := runtime.NumGoroutine()
	if _, err := f.sc.Scan(context.Background(), ghost); err == nil {
		t.Fatal("expected catalog write failure")
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if after := runtime.NumGoroutine(); after > before {
		t.Fatalf("scan leaked goroutines: %d before, %d after", before, after)
	}
}

func TestFingerprintEncodesSizeAndMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.wav")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	fp := scanner.Fingerprint(info)
	if fp == "" {
		t.Fatal("empty fingerprint")
	}

	if err := os.WriteFile(path, []byte("123456"), 0o644); err != nil {
		t.Fatal(err)
	}
	info2, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if scanner.Fingerprint(info2) == fp {
		t.Fatal("fingerprint unchanged after size change")
	}
}
