package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"libretto/internal/audio"
)

func decodeFLAC(path string) (*audio.Buffer, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil {
		return nil, fmt.Errorf("%w: missing flac stream info", ErrUnsupportedFormat)
	}

	format := audio.FormatInt16
	if info.BitsPerSample > 16 {
		format = audio.FormatInt24
	}
	scale := float32(int64(1) << (info.BitsPerSample - 1))

	channels := int(info.NChannels)
	buf := &audio.Buffer{
		Data:       make([]float32, 0, int(info.NSamples)*channels),
		Format:     format,
		SampleRate: info.SampleRate,
		Channels:   uint16(info.NChannels),
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode flac frame: %w", err)
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				buf.Data = append(buf.Data, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}
	return buf, nil
}
