package oversample

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/valvesat/internal/testutil"
)

// sineBlock returns a unit sine at freq cycles per sample.
func sineBlock(n int, freq float64) []float64 {
	return testutil.Sine(freq, 1, 1, n, 0)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name                      string
		stages, channels, maxSize int
	}{
		{"zero stages", 0, 1, 64},
		{"too many stages", MaxStages + 1, 1, 64},
		{"zero channels", 2, 0, 64},
		{"zero block", 2, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.stages, tt.channels, tt.maxSize); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFactorAndLatency(t *testing.T) {
	os4, err := New(2, 2, 128)
	if err != nil {
		t.Fatal(err)
	}
	os8, err := New(3, 2, 128)
	if err != nil {
		t.Fatal(err)
	}

	if os4.Factor() != 4 || os8.Factor() != 8 {
		t.Fatalf("factors %d, %d; want 4, 8", os4.Factor(), os8.Factor())
	}
	if os4.Latency() <= 0 {
		t.Fatalf("4x latency %v, want > 0", os4.Latency())
	}
	if os8.Latency() <= os4.Latency() {
		t.Fatalf("8x latency %v not above 4x latency %v", os8.Latency(), os4.Latency())
	}

	again, _ := New(3, 1, 16)
	if again.Latency() != os8.Latency() {
		t.Fatalf("latency depends on channels or block size: %v vs %v", again.Latency(), os8.Latency())
	}
}

func TestRoundTrip_DelayedSine(t *testing.T) {
	for _, stages := range []int{1, 2, 3} {
		const n, freq, blockSize = 6000, 0.004, 500

		o, err := New(stages, 1, blockSize)
		if err != nil {
			t.Fatal(err)
		}

		src := sineBlock(n, freq)
		got := make([]float64, n)
		for start := 0; start < n; start += blockSize {
			if _, err := o.ProcessUp([][]float64{src[start : start+blockSize]}); err != nil {
				t.Fatal(err)
			}
			if err := o.ProcessDown([][]float64{got[start : start+blockSize]}); err != nil {
				t.Fatal(err)
			}
		}

		delay := o.Latency()
		for i := 2000; i < n; i++ {
			want := math.Sin(2 * math.Pi * freq * (float64(i) - delay))
			if math.Abs(got[i]-want) > 2e-3 {
				t.Fatalf("stages=%d sample %d: got %v, want %v (latency %v)", stages, i, got[i], want, delay)
			}
		}
	}
}

func TestProcessUp_HoldsInterpolatedSignal(t *testing.T) {
	o, _ := New(2, 2, 64)

	in := [][]float64{make([]float64, 64), make([]float64, 64)}
	for i := range in[0] {
		in[0][i] = 1
		in[1][i] = -1
	}

	var hi [][]float64
	for range 20 {
		var err error
		if hi, err = o.ProcessUp(in); err != nil {
			t.Fatal(err)
		}
	}

	if len(hi) != 2 || len(hi[0]) != 256 {
		t.Fatalf("views %d x %d, want 2 x 256", len(hi), len(hi[0]))
	}
	for i := range hi[0] {
		if math.Abs(hi[0][i]-1) > 1e-9 || math.Abs(hi[1][i]+1) > 1e-9 {
			t.Fatalf("settled DC sample %d = (%v, %v)", i, hi[0][i], hi[1][i])
		}
	}
}

func TestResetRestoresFreshState(t *testing.T) {
	a, _ := New(3, 1, 32)
	b, _ := New(3, 1, 32)

	noise := sineBlock(32, 0.37)
	_, _ = a.ProcessUp([][]float64{noise})
	_ = a.ProcessDown([][]float64{make([]float64, 32)})
	a.Reset()

	in := sineBlock(32, 0.01)
	outA := make([]float64, 32)
	outB := make([]float64, 32)
	_, _ = a.ProcessUp([][]float64{in})
	_ = a.ProcessDown([][]float64{outA})
	_, _ = b.ProcessUp([][]float64{in})
	_ = b.ProcessDown([][]float64{outB})

	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("sample %d differs after Reset: %v vs %v", i, outA[i], outB[i])
		}
	}
}

func TestErrors(t *testing.T) {
	o, _ := New(2, 2, 16)

	if _, err := o.ProcessUp([][]float64{make([]float64, 16)}); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("got %v, want ErrChannelMismatch", err)
	}
	if _, err := o.ProcessUp([][]float64{make([]float64, 17), make([]float64, 17)}); !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("got %v, want ErrBlockTooLarge", err)
	}
	if _, err := o.ProcessUp([][]float64{make([]float64, 8), make([]float64, 4)}); !errors.Is(err, ErrRaggedBlock) {
		t.Errorf("got %v, want ErrRaggedBlock", err)
	}

	_, _ = o.ProcessUp([][]float64{make([]float64, 8), make([]float64, 8)})
	if err := o.ProcessDown([][]float64{make([]float64, 4), make([]float64, 4)}); !errors.Is(err, ErrBlockTooLarge) {
		t.Errorf("got %v, want ErrBlockTooLarge for short output", err)
	}
}

func TestProcess_NoAllocs(t *testing.T) {
	o, _ := New(3, 2, 256)
	in := [][]float64{sineBlock(256, 0.01), sineBlock(256, 0.02)}
	out := [][]float64{make([]float64, 256), make([]float64, 256)}

	allocs := testing.AllocsPerRun(50, func() {
		_, _ = o.ProcessUp(in)
		_ = o.ProcessDown(out)
	})
	if allocs != 0 {
		t.Fatalf("up/down allocated %.0f times per block", allocs)
	}
}

func BenchmarkOversampler8x(b *testing.B) {
	o, _ := New(3, 2, 512)
	in := [][]float64{sineBlock(512, 0.01), sineBlock(512, 0.013)}
	out := [][]float64{make([]float64, 512), make([]float64, 512)}

	b.ResetTimer()
	for b.Loop() {
		_, _ = o.ProcessUp(in)
		_ = o.ProcessDown(out)
	}
}

func TestRoundTripLatency_MatchesOversampler(t *testing.T) {
	for stages := 1; stages <= MaxStages; stages++ {
		o, err := New(stages, 1, 8)
		if err != nil {
			t.Fatal(err)
		}
		got, err := RoundTripLatency(stages)
		if err != nil {
			t.Fatal(err)
		}
		if got != o.Latency() {
			t.Fatalf("stages=%d: RoundTripLatency %v, Oversampler.Latency %v", stages, got, o.Latency())
		}
	}

	if _, err := RoundTripLatency(0); err == nil {
		t.Fatal("expected error for zero stages")
	}
}
