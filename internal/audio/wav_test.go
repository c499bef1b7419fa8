package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWAVRoundTrip(t *testing.T) {
	tests := []struct {
		bits int
		tol  float64
	}{
		{16, 1.0 / 32768},
		{24, 1.0 / 8388608},
		{32, 1e-9},
	}

	src := Sine(44100, 2, 441, 0.8, 50*time.Millisecond)
	src.Samples[1] = 1.5 // clipped on write

	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "clip.wav")
		if err := WriteWAVFile(path, src, tt.bits); err != nil {
			t.Fatalf("%d bit write: %v", tt.bits, err)
		}

		got, err := ReadWAVFile(path)
		if err != nil {
			t.Fatalf("%d bit read: %v", tt.bits, err)
		}
		if got.SampleRate != 44100 || got.NumChannels != 2 || got.BitDepth != tt.bits {
			t.Fatalf("%d bit format: %+v", tt.bits, got)
		}
		if got.Frames() != src.Frames() {
			t.Fatalf("%d bit frames = %d, want %d", tt.bits, got.Frames(), src.Frames())
		}

		for i, v := range got.Samples {
			want := min(src.Samples[i], 1)
			if math.Abs(v-want) > tt.tol {
				t.Fatalf("%d bit sample %d: %v, want %v", tt.bits, i, v, want)
			}
		}
	}
}

func TestClipHelpers(t *testing.T) {
	c := Sine(1000, 1, 250, 0.5, time.Second)
	if c.Frames() != 1000 {
		t.Fatalf("frames = %d", c.Frames())
	}
	if c.Duration() != time.Second {
		t.Fatalf("duration = %v", c.Duration())
	}
	if math.Abs(c.Peak()-0.5) > 1e-12 {
		t.Fatalf("peak = %v", c.Peak())
	}
	if (&Clip{}).Frames() != 0 || (&Clip{}).Duration() != 0 {
		t.Fatal("empty clip should have no frames")
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a wav ", 10)), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAVFile(path); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("got %v, want ErrInvalidWAV", err)
	}
}

func TestWriteWAVRejectsBadFormat(t *testing.T) {
	c := Sine(48000, 1, 100, 0.5, 10*time.Millisecond)
	path := filepath.Join(t.TempDir(), "x.wav")
	if err := WriteWAVFile(path, c, 12); err == nil {
		t.Fatal("expected error for 12 bit output")
	}
	if err := WriteWAVFile(path, &Clip{SampleRate: 48000, BitDepth: 16}, 0); err == nil {
		t.Fatal("expected error for zero channels")
	}
}
