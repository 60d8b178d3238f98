package decode

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"libretto/internal/audio"
)

func decodeWAV(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", ErrUnsupportedFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}

	format := audio.FormatInt16
	scale := float32(1 << 15)
	switch pcm.SourceBitDepth {
	case 24:
		format = audio.FormatInt24
		scale = float32(1 << 23)
	case 32:
		format = audio.FormatFloat32
		scale = float32(1 << 31)
	}

	buf := &audio.Buffer{
		Data:       make([]float32, len(pcm.Data)),
		Format:     format,
		SampleRate: uint32(pcm.Format.SampleRate),
		Channels:   uint16(pcm.Format.NumChannels),
	}
	for i, s := range pcm.Data {
		buf.Data[i] = float32(s) / scale
	}
	return buf, nil
}
