package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"libretto/internal/audio"
)

// MakeBuffer builds an interleaved buffer from per-channel sample generators.
// gen receives (frame, channel) and returns the sample value.
func MakeBuffer(sampleRate uint32, channels uint16, frames int, gen func(frame, channel int) float32) *audio.Buffer {
	buf := audio.NewBuffer(audio.FormatFloat32, sampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < int(channels); ch++ {
			buf.Data[i*int(channels)+ch] = gen(i, ch)
		}
	}
	return buf
}

// SineBuffer builds a sine wave buffer, identical across channels.
func SineBuffer(sampleRate uint32, channels uint16, frames int, freq, amplitude float64) *audio.Buffer {
	return MakeBuffer(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(amplitude * math.Sin(2*math.Pi*freq*float64(frame)/float64(sampleRate)))
	})
}

// WriteWAV writes buf to path as a 16-bit PCM WAV file. Failures abort the
// test. The file is a genuine container so decoding and extraction tests run
// against real data.
func WriteWAV(t testing.TB, path string, buf *audio.Buffer) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

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
		t.Fatalf("write wav samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("finalize wav: %v", err)
	}
}

// WriteSineWAV writes a one-channel sine fixture and returns its path.
func WriteSineWAV(t testing.TB, dir, name string, sampleRate uint32, frames int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteWAV(t, path, SineBuffer(sampleRate, 1, frames, 440, 0.5))
	return path
}
