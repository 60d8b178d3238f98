package catalog

import "time"

// Library is a named root directory that audiobooks belong to.
type Library struct {
	ID        string
	Name      string
	RootPath  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Audiobook is one cataloged audio file.
type Audiobook struct {
	ID              string
	LibraryID       string
	Path            string
	Title           string
	Author          string
	Narrator        string
	DurationSeconds float64
	SizeBytes       int64
	Fingerprint     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Stats summarizes one library's cataloged content.
type Stats struct {
	AudiobookCount  int64
	TotalSizeBytes  int64
	TotalDurationHr float64
}
