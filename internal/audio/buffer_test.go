package audio_test

import (
	"testing"
	"time"

	"libretto/internal/audio"
)

func TestBufferFrameCount(t *testing.T) {
	buf := audio.NewBuffer(audio.FormatFloat32, 44100, 2, 100)
	if got := buf.FrameCount(); got != 100 {
		t.Fatalf("FrameCount = %d, want 100", got)
	}
	if got := len(buf.Data); got != 200 {
		t.Fatalf("len(Data) = %d, want 200", got)
	}
}

func TestBufferDuration(t *testing.T) {
	buf := audio.NewBuffer(audio.FormatInt16, 1000, 1, 500)
	if got := buf.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration = %v, want 500ms", got)
	}
}

func TestBufferClone(t *testing.T) {
	buf := audio.NewBuffer(audio.FormatFloat32, 22050, 2, 4)
	buf.Data[0] = 0.5

	clone := buf.Clone()
	clone.Data[0] = -0.5

	if buf.Data[0] != 0.5 {
		t.Fatal("mutating clone changed original")
	}
	if clone.SampleRate != buf.SampleRate || clone.Channels != buf.Channels {
		t.Fatal("clone lost shape metadata")
	}
}

func TestBufferValidate(t *testing.T) {
	cases := []struct {
		name    string
		buf     *audio.Buffer
		wantErr bool
	}{
		{"valid", audio.NewBuffer(audio.FormatFloat32, 44100, 2, 10), false},
		{"zero channels", &audio.Buffer{SampleRate: 44100}, true},
		{"zero rate", &audio.Buffer{Channels: 2}, true},
		{"ragged frames", &audio.Buffer{Data: make([]float32, 3), SampleRate: 44100, Channels: 2}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.buf.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestBufferFrame(t *testing.T) {
	buf := audio.NewBuffer(audio.FormatFloat32, 44100, 2, 3)
	buf.Data = []float32{0, 1, 2, 3, 4, 5}

	frame := buf.Frame(1)
	if len(frame) != 2 || frame[0] != 2 || frame[1] != 3 {
		t.Fatalf("Frame(1) = %v, want [2 3]", frame)
	}
}
