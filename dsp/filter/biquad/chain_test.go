package biquad

import (
	"math"
	"testing"
)

// cascade is a lowpass, a resonant notch-ish stage and a mild tilt.
func cascade() []Coefficients {
	return []Coefficients{
		smoothing(),
		{B0: 0.9, B1: -1.6, B2: 0.75, A1: -1.6, A2: 0.65},
		{B0: 1.1, B1: -0.3, B2: 0.05, A1: -0.4, A2: 0.1},
	}
}

func TestChainEqualsSectionsInSeries(t *testing.T) {
	chain := NewChain(cascade())
	if chain.Len() != 3 {
		t.Fatalf("Len = %d, want 3", chain.Len())
	}

	var series []*Section
	for _, c := range cascade() {
		series = append(series, NewSection(c))
	}

	for n := range 256 {
		x := math.Sin(0.17 * float64(n))
		want := x
		for _, s := range series {
			want = s.ProcessSample(want)
		}
		if got := chain.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Fatalf("n=%d: chain %.15f, series %.15f", n, got, want)
		}
	}
}

func TestChainBlockEqualsSample(t *testing.T) {
	in := make([]float64, 301)
	for i := range in {
		in[i] = 0.8 * math.Cos(0.09*float64(i))
	}

	ref := NewChain(cascade())
	block := NewChain(cascade())

	out := append([]float64(nil), in...)
	block.ProcessBlock(out)
	for i, x := range in {
		if want := ref.ProcessSample(x); !almostEqual(out[i], want, 1e-11) {
			t.Fatalf("n=%d: block %.15f, sample %.15f", i, out[i], want)
		}
	}
}

func TestChainSetCoefficients(t *testing.T) {
	tests := []struct {
		name  string
		next  []Coefficients
		want  int
		first float64
		last  float64
	}{
		{name: "same length", next: []Coefficients{{B0: 0.3}, Identity(), {B0: 2}}, want: 3, first: 0.3, last: 2},
		{name: "shorter", next: []Coefficients{{B0: 0.3}}, want: 1, first: 0.3, last: 1.1},
		{name: "longer", next: []Coefficients{{B0: 0.3}, Identity(), {B0: 2}, {B0: 9}}, want: 3, first: 0.3, last: 2},
		{name: "empty", want: 0, first: 0.25, last: 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(cascade())
			chain.ProcessBlock([]float64{1, 0.3, -0.7})
			var before [3][2]float64
			for i := range before {
				before[i] = chain.Section(i).State()
			}

			if got := chain.SetCoefficients(tt.next); got != tt.want {
				t.Fatalf("applied %d, want %d", got, tt.want)
			}
			if chain.Len() != 3 {
				t.Fatalf("Len changed to %d", chain.Len())
			}
			if b0 := chain.Section(0).B0; b0 != tt.first {
				t.Errorf("section 0 B0 = %v, want %v", b0, tt.first)
			}
			if b0 := chain.Section(2).B0; b0 != tt.last {
				t.Errorf("section 2 B0 = %v, want %v", b0, tt.last)
			}
			for i := range before {
				if st := chain.Section(i).State(); st != before[i] {
					t.Errorf("section %d state %v, want %v", i, st, before[i])
				}
			}
		})
	}
}

func TestChainSetCoefficientsNoAllocs(t *testing.T) {
	chain := NewChain(cascade())
	next := cascade()

	if n := testing.AllocsPerRun(100, func() { chain.SetCoefficients(next) }); n != 0 {
		t.Fatalf("SetCoefficients allocated %.0f times", n)
	}
}

func TestChainReset(t *testing.T) {
	chain := NewChain(cascade())
	chain.ProcessBlock([]float64{1, 0.5, -0.25, 0.75})
	chain.Reset()

	for i := range chain.Len() {
		if st := chain.Section(i).State(); st != [2]float64{} {
			t.Fatalf("section %d: state %v after Reset", i, st)
		}
	}
}

func TestChainBoundedOnLongInput(t *testing.T) {
	chain := NewChain(cascade())
	buf := make([]float64, 4096)
	for block := range 50 {
		for i := range buf {
			buf[i] = math.Sin(0.05 * float64(block*len(buf)+i))
		}
		chain.ProcessBlock(buf)
		for i, y := range buf {
			if math.IsNaN(y) || math.Abs(y) > 100 {
				t.Fatalf("block %d sample %d: %v", block, i, y)
			}
		}
	}
}

func BenchmarkChainProcessBlock(b *testing.B) {
	chain := NewChain(cascade())
	buf := make([]float64, 512)
	for i := range buf {
		buf[i] = math.Sin(0.01 * float64(i))
	}

	b.SetBytes(int64(8 * len(buf)))
	for b.Loop() {
		chain.ProcessBlock(buf)
	}
}
