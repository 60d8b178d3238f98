package scanner

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"libretto/internal/logging"
)

// supportedExtensions is the fixed set of audio containers the scanner
// catalogs. Comparison is case-insensitive.
var supportedExtensions = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".m4b":  {},
	".flac": {},
	".ogg":  {},
	".wav":  {},
	".aac":  {},
}

// SupportedExtension reports whether path has a cataloged audio extension.
func SupportedExtension(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Discoverer streams audio file paths from a directory tree.
type Discoverer struct {
	logger *slog.Logger
}

// NewDiscoverer returns a discoverer. A nil logger disables logging.
func NewDiscoverer(logger *slog.Logger) *Discoverer {
	return &Discoverer{logger: logging.NewComponentLogger(logger, "discover")}
}

// Discover walks root and sends every supported audio file path on the
// returned channel. Per-entry errors (unreadable subdirectories, broken
// symlinks) are logged and skipped; a failure to read root itself is fatal
// and arrives on the error channel. Both channels close when the walk ends.
func (d *Discoverer) Discover(ctx context.Context, root string) (<-chan string, <-chan error) {
	paths := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errc)

		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				d.logger.Warn("skipping unreadable entry",
					logging.String("path", path), logging.Error(err))
				return nil
			}
			if entry.IsDir() {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			if !SupportedExtension(path) {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case paths <- path:
				return nil
			}
		})
		if err != nil {
			errc <- err
		}
	}()

	return paths, errc
}
