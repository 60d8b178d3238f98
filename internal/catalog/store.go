package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"libretto/internal/config"
)

// ErrLibraryNotFound reports a lookup for a library that is not cataloged.
var ErrLibraryNotFound = errors.New("library not found")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DatabasePath)
}

// OpenPath opens the catalog database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateLibrary inserts a new named library rooted at rootPath.
func (s *Store) CreateLibrary(ctx context.Context, name, rootPath string) (*Library, error) {
	now := time.Now().UTC()
	lib := &Library{
		ID:        uuid.NewString(),
		Name:      name,
		RootPath:  rootPath,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (id, name, root_path, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		lib.ID, lib.Name, lib.RootPath, formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert library: %w", err)
	}
	return lib, nil
}

// LibraryByName fetches a library by its unique name.
func (s *Store) LibraryByName(ctx context.Context, name string) (*Library, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, root_path, created_at, updated_at FROM libraries WHERE name = ?`, name)
	lib, err := scanLibrary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrLibraryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get library: %w", err)
	}
	return lib, nil
}

// Libraries returns all libraries ordered by name.
func (s *Store) Libraries(ctx context.Context) ([]Library, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, root_path, created_at, updated_at FROM libraries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	var libs []Library
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		libs = append(libs, *lib)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate libraries: %w", err)
	}
	return libs, nil
}

// Fingerprints returns a path-to-fingerprint snapshot for one library. The
// scanner classifies discovered files against this map.
func (s *Store) Fingerprints(ctx context.Context, libraryID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, fingerprint FROM audiobooks WHERE library_id = ?`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("load fingerprints: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]string)
	for rows.Next() {
		var path, fingerprint string
		if err := rows.Scan(&path, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		snapshot[path] = fingerprint
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fingerprints: %w", err)
	}
	return snapshot, nil
}

// ListPaths returns every cataloged path for one library.
func (s *Store) ListPaths(ctx context.Context, libraryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM audiobooks WHERE library_id = ? ORDER BY path`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan path: %w", err)
		}
		paths = append(paths, path)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paths: %w", err)
	}
	return paths, nil
}

// BatchUpsert writes a batch of audiobooks in a single transaction. A failed
// transaction is retried once before the error escalates to the caller.
func (s *Store) BatchUpsert(ctx context.Context, libraryID string, books []Audiobook) error {
	if len(books) == 0 {
		return nil
	}

	err := s.upsertTx(ctx, libraryID, books)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	if retryErr := s.upsertTx(ctx, libraryID, books); retryErr == nil {
		return nil
	}
	return fmt.Errorf("batch upsert (after retry): %w", err)
}

func (s *Store) upsertTx(ctx context.Context, libraryID string, books []Audiobook) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO audiobooks (
            id, library_id, path, title, author, narrator,
            duration_seconds, size_bytes, fingerprint, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (library_id, path) DO UPDATE SET
            title = excluded.title,
            author = excluded.author,
            narrator = excluded.narrator,
            duration_seconds = excluded.duration_seconds,
            size_bytes = excluded.size_bytes,
            fingerprint = excluded.fingerprint,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now().UTC())
	for _, book := range books {
		id := book.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			id, libraryID, book.Path, book.Title, book.Author, book.Narrator,
			book.DurationSeconds, book.SizeBytes, book.Fingerprint, now, now,
		); err != nil {
			return fmt.Errorf("upsert %s: %w", book.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Audiobooks returns every audiobook in one library ordered by path.
func (s *Store) Audiobooks(ctx context.Context, libraryID string) ([]Audiobook, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, library_id, path, title, author, narrator,
               duration_seconds, size_bytes, fingerprint, created_at, updated_at
        FROM audiobooks WHERE library_id = ? ORDER BY path`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list audiobooks: %w", err)
	}
	defer rows.Close()

	var books []Audiobook
	for rows.Next() {
		book, err := scanAudiobook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audiobook: %w", err)
		}
		books = append(books, *book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audiobooks: %w", err)
	}
	return books, nil
}

// Stats aggregates counts, size, and duration for one library.
func (s *Store) Stats(ctx context.Context, libraryID string) (Stats, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1), COALESCE(SUM(size_bytes), 0), COALESCE(SUM(duration_seconds), 0)
        FROM audiobooks WHERE library_id = ?`, libraryID)

	var stats Stats
	var durationSeconds float64
	if err := row.Scan(&stats.AudiobookCount, &stats.TotalSizeBytes, &durationSeconds); err != nil {
		return Stats{}, fmt.Errorf("library stats: %w", err)
	}
	stats.TotalDurationHr = durationSeconds / 3600
	return stats, nil
}

func scanLibrary(scanner interface{ Scan(dest ...any) error }) (*Library, error) {
	var (
		lib        Library
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&lib.ID, &lib.Name, &lib.RootPath, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	lib.CreatedAt = parseTime(createdRaw)
	lib.UpdatedAt = parseTime(updatedRaw)
	return &lib, nil
}

func scanAudiobook(scanner interface{ Scan(dest ...any) error }) (*Audiobook, error) {
	var (
		book       Audiobook
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&book.ID, &book.LibraryID, &book.Path, &book.Title, &book.Author, &book.Narrator,
		&book.DurationSeconds, &book.SizeBytes, &book.Fingerprint, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	book.CreatedAt = parseTime(createdRaw)
	book.UpdatedAt = parseTime(updatedRaw)
	return &book, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
