package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"libretto/internal/audio"
)

func decodeMP3(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	// go-mp3 always emits interleaved 16-bit little-endian stereo.
	capacity := dec.Length()
	if capacity < 0 {
		capacity = 0
	}
	raw := make([]byte, 0, int(capacity))
	chunk := make([]byte, 32*1024)
	for {
		n, err := dec.Read(chunk)
		raw = append(raw, chunk[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode mp3: %w", err)
		}
	}

	samples := len(raw) / 2
	buf := &audio.Buffer{
		Data:       make([]float32, samples),
		Format:     audio.FormatInt16,
		SampleRate: uint32(dec.SampleRate()),
		Channels:   2,
	}
	for i := 0; i < samples; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		buf.Data[i] = float32(v) / 32768.0
	}
	return buf, nil
}
