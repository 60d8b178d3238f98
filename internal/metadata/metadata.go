// Package metadata extracts header-level audio metadata (duration, format,
// channel layout, embedded tags) without fully decoding the stream.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	gowav "github.com/go-audio/wav"

	"libretto/internal/logging"
)

var (
	// ErrUnsupportedFormat reports a file whose extension matched but whose
	// content does not parse as the expected audio container.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrCorruptMetadata reports a container that parsed but carried
	// malformed or incomplete header information.
	ErrCorruptMetadata = errors.New("corrupt audio metadata")
)

// AudioMetadata is the header-level description of one audio file. SampleRate
// and Channels are zero for tag-only containers (m4a/m4b/aac).
type AudioMetadata struct {
	Title    string
	Author   string
	Narrator string

	Format     string
	Duration   time.Duration
	SampleRate uint32
	Channels   uint16
}

// Extractor reads audio file headers and embedded tags.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor returns an extractor. A nil logger disables logging.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logging.NewComponentLogger(logger, "metadata")}
}

type headerInfo struct {
	duration   time.Duration
	sampleRate uint32
	channels   uint16

	// tagOnly marks containers whose stream layout cannot be probed; a zero
	// sample rate and channel count are valid for them.
	tagOnly bool
}

// Extract opens path, probes the container headers for duration and layout,
// and reads embedded tags. Tags that are absent or unreadable fall back to
// the file name (title) and parent directory (author).
func (e *Extractor) Extract(path string) (*AudioMetadata, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var probe func(f *os.File) (headerInfo, error)
	switch ext {
	case ".wav":
		probe = probeWAV
	case ".mp3":
		probe = probeMP3
	case ".flac":
		probe = probeFLAC
	case ".ogg":
		probe = probeVorbis
	case ".m4a", ".m4b", ".aac":
		probe = probeMP4
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := probe(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !info.tagOnly && (info.sampleRate == 0 || info.channels == 0) {
		return nil, fmt.Errorf("%s: %w", path, ErrCorruptMetadata)
	}

	meta := &AudioMetadata{
		Format:     strings.TrimPrefix(ext, "."),
		Duration:   info.duration,
		SampleRate: info.sampleRate,
		Channels:   info.channels,
	}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if tags, err := tag.ReadFrom(f); err == nil {
			meta.Title = strings.TrimSpace(tags.Title())
			meta.Author = strings.TrimSpace(tags.Artist())
			meta.Narrator = strings.TrimSpace(tags.Composer())
		} else {
			e.logger.Debug("tag read failed, using filename fallback",
				logging.String("file", path), logging.Error(err))
		}
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if meta.Author == "" {
		if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != string(filepath.Separator) {
			meta.Author = parent
		}
	}
	return meta, nil
}

func probeWAV(f *os.File) (headerInfo, error) {
	dec := gowav.NewDecoder(f)
	if !dec.IsValidFile() {
		return headerInfo{}, ErrUnsupportedFormat
	}
	duration, err := dec.Duration()
	if err != nil {
		return headerInfo{}, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}
	return headerInfo{
		duration:   duration,
		sampleRate: dec.SampleRate,
		channels:   dec.NumChans,
	}, nil
}

func probeMP3(f *os.File) (headerInfo, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return headerInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	info := headerInfo{
		sampleRate: uint32(dec.SampleRate()),
		channels:   2,
	}
	// Length reports the decoded stream size: 16-bit stereo, 4 bytes per frame.
	if size := dec.Length(); size > 0 && dec.SampleRate() > 0 {
		frames := size / 4
		info.duration = time.Duration(frames) * time.Second / time.Duration(dec.SampleRate())
	}
	return info, nil
}

func probeFLAC(f *os.File) (headerInfo, error) {
	stream, err := flac.New(f)
	if err != nil {
		return headerInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	si := stream.Info
	if si == nil {
		return headerInfo{}, ErrCorruptMetadata
	}
	info := headerInfo{
		sampleRate: si.SampleRate,
		channels:   uint16(si.NChannels),
	}
	if si.SampleRate > 0 && si.NSamples > 0 {
		info.duration = time.Duration(si.NSamples) * time.Second / time.Duration(si.SampleRate)
	}
	return info, nil
}

func probeVorbis(f *os.File) (headerInfo, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return headerInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	info := headerInfo{
		sampleRate: uint32(dec.SampleRate()),
		channels:   uint16(dec.Channels()),
	}
	if frames := dec.Length(); frames > 0 && dec.SampleRate() > 0 {
		info.duration = time.Duration(frames) * time.Second / time.Duration(dec.SampleRate())
	}
	return info, nil
}

// probeMP4 covers m4a/m4b/aac containers. dhowden/tag validates the MP4 box
// structure but exposes no stream info, so these files are tag-only: duration
// and layout stay zero and the file is cataloged rather than rejected.
func probeMP4(f *os.File) (headerInfo, error) {
	if _, err := tag.ReadFrom(f); err != nil {
		return headerInfo{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return headerInfo{tagOnly: true}, nil
}
