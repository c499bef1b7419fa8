package dcblock

import (
	"math"
	"testing"
)

func TestPrepare_Coefficient(t *testing.T) {
	b := New()
	if err := b.Prepare(48000); err != nil {
		t.Fatal(err)
	}

	want := 1 - 2*math.Pi*5/48000
	if math.Abs(b.R()-want) > 1e-15 {
		t.Fatalf("R = %v, want %v", b.R(), want)
	}
}

func TestRemovesOffset(t *testing.T) {
	const sr = 44100.0
	b := New()
	if err := b.Prepare(sr); err != nil {
		t.Fatal(err)
	}

	buf := make([]float64, int(sr))
	for i := range buf {
		buf[i] = 0.5 + 0.25*math.Sin(2*math.Pi*1000*float64(i)/sr)
	}
	b.ProcessBlock(buf)

	// Time constant is 1/(2*pi*5) s, so the offset is gone after a second.
	var mean float64
	tail := buf[len(buf)-4410:]
	for _, y := range tail {
		mean += y
	}
	mean /= float64(len(tail))
	if math.Abs(mean) > 1e-3 {
		t.Fatalf("residual DC %v", mean)
	}
}

func TestCornerFrequency(t *testing.T) {
	const sr = 48000.0
	b := New()
	_ = b.Prepare(sr)

	// |H(f)| at the corner of y = x - x1 + R*y1 is close to -3 dB.
	w := 2 * math.Pi * DefaultCutoff / sr
	num := math.Hypot(1-math.Cos(w), math.Sin(w))
	den := math.Hypot(1-b.R()*math.Cos(w), b.R()*math.Sin(w))
	if db := 20 * math.Log10(num/den); math.Abs(db+3) > 0.1 {
		t.Fatalf("gain at corner %.3f dB, want about -3 dB", db)
	}
}

func TestBlockMatchesSample(t *testing.T) {
	a, b := New(), New()
	_ = a.Prepare(96000)
	_ = b.Prepare(96000)

	buf := make([]float64, 333)
	for i := range buf {
		buf[i] = math.Sin(float64(i)*0.1) + 0.3
	}
	want := make([]float64, len(buf))
	for i, x := range buf {
		want[i] = a.ProcessSample(x)
	}

	b.ProcessBlock(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("sample %d: block %v, sample %v", i, buf[i], want[i])
		}
	}
}

func TestSilenceAndReset(t *testing.T) {
	b := New()
	_ = b.Prepare(48000)
	b.ProcessSample(1)
	b.Reset()

	for range 10 {
		if y := b.ProcessSample(0); y != 0 {
			t.Fatalf("silence after Reset produced %v", y)
		}
	}
}

func TestInvalid(t *testing.T) {
	if err := New().Prepare(0); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if err := New().Prepare(math.NaN()); err == nil {
		t.Error("expected error for NaN sample rate")
	}
	if _, err := NewWithCutoff(-1); err == nil {
		t.Error("expected error for negative cutoff")
	}
	b, err := NewWithCutoff(1000)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Prepare(2000); err == nil {
		t.Error("expected error for cutoff near sample rate")
	}
}
