// Package decode produces PCM sample buffers from audio files. Only the
// containers the library catalogs are supported: WAV, MP3, FLAC, and Ogg
// Vorbis. M4A/M4B/AAC files are cataloged from their headers but not decoded.
package decode

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"libretto/internal/audio"
)

// ErrUnsupportedFormat reports a file whose container cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decode reads the whole file at path into a sample buffer. The container is
// chosen by extension, compared case-insensitively.
func Decode(path string) (*audio.Buffer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(path)
	case ".mp3":
		return decodeMP3(path)
	case ".flac":
		return decodeFLAC(path)
	case ".ogg":
		return decodeVorbis(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// CanDecode reports whether Decode understands the file's extension.
func CanDecode(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".mp3", ".flac", ".ogg":
		return true
	default:
		return false
	}
}
