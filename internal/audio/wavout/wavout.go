// Package wavout writes processed sample buffers back to disk as 16-bit PCM
// WAV files.
package wavout

import (
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"libretto/internal/audio"
)

// Write stores buf at path as a 16-bit PCM WAV file, creating parent
// directories as needed.
func Write(path string, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("invalid buffer: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	enc := wav.NewEncoder(f, int(buf.SampleRate), 16, int(buf.Channels), 1)

	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(buf.Channels),
			SampleRate:  int(buf.SampleRate),
		},
		Data:           make([]int, len(buf.Data)),
		SourceBitDepth: 16,
	}
	for i, s := range buf.Data {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm.Data[i] = int(s * 32767)
	}

	if err := enc.Write(pcm); err != nil {
		_ = f.Close()
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return f.Close()
}
