package valve

import (
	"math"
	"testing"
)

func TestFractionalDelay_Integer(t *testing.T) {
	d := newFractionalDelay(5)
	d.setDelay(3)

	buf := make([]float64, 10)
	buf[0] = 1
	d.processBlock(buf)

	for i, v := range buf {
		want := 0.0
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestFractionalDelay_LowFrequencySine(t *testing.T) {
	const freq = 0.002
	for _, delay := range []float64{1, 1.5, 3.37, 4.02, 7.9} {
		d := newFractionalDelay(8)
		d.setDelay(delay)

		buf := make([]float64, 2000)
		for i := range buf {
			buf[i] = math.Sin(2 * math.Pi * freq * float64(i))
		}
		d.processBlock(buf)

		for i := 100; i < len(buf); i++ {
			want := math.Sin(2 * math.Pi * freq * (float64(i) - delay))
			if math.Abs(buf[i]-want) > 1e-5 {
				t.Fatalf("delay %v sample %d: got %v, want %v", delay, i, buf[i], want)
			}
		}
	}
}

func TestFractionalDelay_ClampAndReset(t *testing.T) {
	d := newFractionalDelay(4)
	if len(d.ring) != 8 {
		t.Fatalf("ring size %d, want 8", len(d.ring))
	}

	d.setDelay(100)
	if d.taps != len(d.ring)-1 {
		t.Fatalf("taps %d not clamped to ring", d.taps)
	}
	d.setDelay(0.2)
	if d.taps != 0 || d.a != 0 {
		t.Fatalf("sub-sample delay not raised to one sample: taps=%d a=%v", d.taps, d.a)
	}

	d.processBlock([]float64{1, 2, 3})
	d.reset()
	buf := []float64{0, 0, 0}
	d.processBlock(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v after reset", i, v)
		}
	}
}
