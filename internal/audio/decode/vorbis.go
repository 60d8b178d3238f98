package decode

import (
	"fmt"
	"os"

	"github.com/jfreymuth/oggvorbis"

	"libretto/internal/audio"
)

func decodeVorbis(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ogg: %w", err)
	}
	defer f.Close()

	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return &audio.Buffer{
		Data:       data,
		Format:     audio.FormatFloat32,
		SampleRate: uint32(format.SampleRate),
		Channels:   uint16(format.Channels),
	}, nil
}
