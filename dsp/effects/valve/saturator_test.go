package valve

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/valvesat/dsp/oversample"
	"github.com/cwbudde/valvesat/internal/testutil"
)

const testRate = 48000.0

func newPrepared(t testing.TB, blockSize, channels int, opts ...Option) *Saturator {
	t.Helper()

	s, err := NewSaturator(opts...)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Prepare(testRate, blockSize, channels); err != nil {
		t.Fatal(err)
	}
	return s
}

func sine(n int, freq, amp float64, offset int) []float64 {
	return testutil.Sine(freq, testRate, amp, n, offset)
}

// render feeds total samples of a stereo test signal in blocks of
// blockSize and returns the left channel.
func render(t *testing.T, s *Saturator, total, blockSize int, c Controls) []float64 {
	t.Helper()

	out := make([]float64, 0, total)
	for start := 0; start < total; start += blockSize {
		n := min(blockSize, total-start)
		buf := [][]float64{sine(n, 220, 0.5, start), sine(n, 330, 0.4, start)}
		if err := s.Process(buf, c); err != nil {
			t.Fatal(err)
		}
		out = append(out, buf[0]...)
	}
	return out
}

func TestProcess_Errors(t *testing.T) {
	s, err := NewSaturator()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Process([][]float64{{0}}, DefaultControls()); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("got %v, want ErrNotPrepared", err)
	}

	if err := s.Prepare(testRate, 64, 2); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		buf  [][]float64
		want error
	}{
		{"mono into stereo", [][]float64{make([]float64, 8)}, ErrChannelMismatch},
		{"ragged", [][]float64{make([]float64, 8), make([]float64, 7)}, ErrChannelMismatch},
		{"too large", [][]float64{make([]float64, 65), make([]float64, 65)}, ErrBlockTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Process(tt.buf, DefaultControls()); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if err := s.Process([][]float64{{}, {}}, DefaultControls()); err != nil {
		t.Fatalf("empty block: %v", err)
	}
}

func TestPrepare_Invalid(t *testing.T) {
	s, _ := NewSaturator()

	tests := []struct {
		name     string
		rate     float64
		block    int
		channels int
	}{
		{"zero rate", 0, 512, 2},
		{"nan rate", math.NaN(), 512, 2},
		{"zero block", 48000, 0, 2},
		{"no channels", 48000, 512, 0},
		{"surround", 48000, 512, 6},
	}
	for _, tt := range tests {
		if err := s.Prepare(tt.rate, tt.block, tt.channels); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	if _, err := NewSaturator(WithLatencyReporter(nil)); err == nil {
		t.Error("expected error for nil reporter")
	}
	if _, err := NewSaturator(WithEnvelopeTimes(0, 0.2)); err == nil {
		t.Error("expected error for zero attack")
	}
}

func TestProcess_SilenceInSilenceOut(t *testing.T) {
	for _, m := range Modes {
		s := newPrepared(t, 256, 2)
		c := Controls{DriveDB: 0, Mix: 1, Mode: m}

		for range 8 {
			buf := [][]float64{make([]float64, 256), make([]float64, 256)}
			if err := s.Process(buf, c); err != nil {
				t.Fatal(err)
			}
			for ch := range buf {
				for i, v := range buf[ch] {
					if v != 0 {
						t.Fatalf("%v: ch %d sample %d = %v, want silence", m, ch, i, v)
					}
				}
			}
		}
	}
}

func TestProcess_OutputBoundedAndFinite(t *testing.T) {
	for _, m := range Modes {
		s := newPrepared(t, 512, 2)
		c := Controls{InputTrimDB: 24, DriveDB: 60, Bias: 0.6, SagAmount: 0.6, Mix: 1, Mode: m}

		testutil.RequireBounded(t, render(t, s, 48000, 512, c), 8)
	}
}

func TestProcess_MixZeroIsDelayedDry(t *testing.T) {
	for _, m := range Modes {
		s := newPrepared(t, 512, 2)
		c := Controls{InputTrimDB: 12, DriveDB: 40, Bias: 0.3, SagAmount: 0.5, OutputTrimDB: -6, Mix: 0, Mode: m}

		const freq, n = 50.0, 4096
		var out []float64
		for start := 0; start < n; start += 512 {
			buf := [][]float64{sine(512, freq, 0.5, start), sine(512, freq, 0.5, start)}
			if err := s.Process(buf, c); err != nil {
				t.Fatal(err)
			}
			out = append(out, buf[0]...)
		}

		lat := s.LatencyInSamples(m)
		for i := 100; i < n; i++ {
			want := 0.5 * math.Sin(2*math.Pi*freq*(float64(i)-lat)/testRate)
			if math.Abs(out[i]-want) > 1e-6 {
				t.Fatalf("%v sample %d: got %v, want %v (latency %v)", m, i, out[i], want, lat)
			}
		}
	}
}

func TestProcess_CrossfadeLaw(t *testing.T) {
	base := Controls{DriveDB: 24, Bias: 0.1, SagAmount: 0.2, Mode: ModePentode}

	run := func(mix float64) []float64 {
		c := base
		c.Mix = mix
		return render(t, newPrepared(t, 256, 2), 4096, 256, c)
	}

	dry, wet, half := run(0), run(1), run(0.5)

	var diff float64
	for i := range wet {
		diff += math.Abs(wet[i] - dry[i])
		if want := 0.5*wet[i] + 0.5*dry[i]; math.Abs(half[i]-want) > 1e-12 {
			t.Fatalf("sample %d: mix 0.5 gave %v, want %v", i, half[i], want)
		}
	}
	if diff == 0 {
		t.Fatal("wet output identical to dry")
	}
}

func TestProcess_OutputTrimIsLinear(t *testing.T) {
	c := Controls{DriveDB: 30, Bias: 0.2, SagAmount: 0.3, Mix: 1, Mode: ModeTorture}
	ref := render(t, newPrepared(t, 512, 2), 8192, 512, c)

	c.OutputTrimDB = -6
	got := render(t, newPrepared(t, 512, 2), 8192, 512, c)

	g := math.Pow(10, -6.0/20)
	for i := range ref {
		if math.Abs(got[i]-ref[i]*g) > 1e-15 {
			t.Fatalf("sample %d: %v, want %v", i, got[i], ref[i]*g)
		}
	}
}

func TestProcess_Deterministic(t *testing.T) {
	seq := []Controls{
		{DriveDB: 20, SagAmount: 0.15, Mix: 1, Mode: ModeTriode},
		{DriveDB: 35, Bias: -0.2, SagAmount: 0.4, Mix: 0.7, Mode: ModeTorture},
		{InputTrimDB: -3, DriveDB: 10, Mix: 1, Mode: ModePentode},
	}

	run := func() []float64 {
		s := newPrepared(t, 512, 2)
		var out []float64
		for i, c := range seq {
			for b := range 4 {
				buf := [][]float64{sine(512, 110, 0.8, (i*4+b)*512), sine(512, 165, 0.6, (i*4+b)*512)}
				if err := s.Process(buf, c); err != nil {
					t.Fatal(err)
				}
				out = append(out, buf[0]...)
				out = append(out, buf[1]...)
			}
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestProcess_BlockSizeInvariant(t *testing.T) {
	c := Controls{DriveDB: 30, Bias: 0.1, SagAmount: 0.6, Mix: 0.8, Mode: ModeTorture}

	big := render(t, newPrepared(t, 512, 2), 6144, 512, c)
	small := render(t, newPrepared(t, 512, 2), 6144, 96, c)

	// The sag envelope and all filter state carry across block boundaries.
	for i := range big {
		if math.Abs(big[i]-small[i]) > 1e-12 {
			t.Fatalf("sample %d: 512-blocks %v, 96-blocks %v", i, big[i], small[i])
		}
	}
}

func TestReset_MatchesFreshInstance(t *testing.T) {
	c := Controls{DriveDB: 25, Bias: 0.05, SagAmount: 0.3, Mix: 0.5, Mode: ModePentode}

	used := newPrepared(t, 256, 2)
	render(t, used, 2048, 256, c)
	used.Reset()

	got := render(t, used, 2048, 256, c)
	want := render(t, newPrepared(t, 256, 2), 2048, 256, c)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d after Reset: %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLatency_PerMode(t *testing.T) {
	s, _ := NewSaturator()

	lat4, _ := oversample.RoundTripLatency(2)
	lat8, _ := oversample.RoundTripLatency(3)

	if got := s.LatencyInSamples(ModeTriode); got != lat4 {
		t.Fatalf("triode latency %v, want %v", got, lat4)
	}
	if got := s.LatencyInSamples(ModePentode); got != lat4 {
		t.Fatalf("pentode latency %v, want %v", got, lat4)
	}
	if got := s.LatencyInSamples(ModeTorture); got != lat8 {
		t.Fatalf("torture latency %v, want %v", got, lat8)
	}
	if lat8 <= lat4 {
		t.Fatalf("8x latency %v not above 4x latency %v", lat8, lat4)
	}
	if got := s.LatencyInSamples(Mode(99)); got != lat4 {
		t.Fatalf("fallback latency %v, want %v", got, lat4)
	}
}

func TestLatencyReporter_OncePerModeChange(t *testing.T) {
	var reports []float64
	reporter := LatencyReporterFunc(func(samples float64) { reports = append(reports, samples) })

	s := newPrepared(t, 64, 1, WithLatencyReporter(reporter))
	if len(reports) != 1 || reports[0] != s.LatencyInSamples(ModeTriode) {
		t.Fatalf("after Prepare reports = %v", reports)
	}

	modes := []Mode{ModeTriode, ModeTriode, ModeTorture, ModeTorture, ModeTorture, ModePentode, ModeTriode}
	for _, m := range modes {
		c := DefaultControls()
		c.Mode = m
		if err := s.Process([][]float64{make([]float64, 64)}, c); err != nil {
			t.Fatal(err)
		}
	}

	want := []float64{
		s.LatencyInSamples(ModeTriode),
		s.LatencyInSamples(ModeTorture),
		s.LatencyInSamples(ModePentode),
		s.LatencyInSamples(ModeTriode),
	}
	if len(reports) != len(want) {
		t.Fatalf("reports = %v, want %v", reports, want)
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Fatalf("report %d = %v, want %v", i, reports[i], want[i])
		}
	}
	if s.Mode() != ModeTriode {
		t.Fatalf("Mode() = %v", s.Mode())
	}
}

type countingSource struct {
	c       Controls
	samples []int
}

func (s *countingSource) NextControls(n int) Controls {
	s.samples = append(s.samples, n)
	return s.c
}

func TestProcessBlock_PullsControls(t *testing.T) {
	s := newPrepared(t, 128, 2)
	src := &countingSource{c: DefaultControls()}

	for _, n := range []int{128, 64, 1} {
		buf := [][]float64{make([]float64, n), make([]float64, n)}
		if err := s.ProcessBlock(buf, src); err != nil {
			t.Fatal(err)
		}
	}

	if len(src.samples) != 3 || src.samples[0] != 128 || src.samples[1] != 64 || src.samples[2] != 1 {
		t.Fatalf("source saw %v", src.samples)
	}

	a := [][]float64{sine(128, 440, 0.5, 0), sine(128, 440, 0.5, 0)}
	b := [][]float64{sine(128, 440, 0.5, 0), sine(128, 440, 0.5, 0)}
	_ = newPrepared(t, 128, 2).ProcessBlock(a, FixedControls(DefaultControls()))
	_ = newPrepared(t, 128, 2).Process(b, DefaultControls())
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("FixedControls differs from Process at %d", i)
		}
	}
}

func TestProcess_NoAllocs(t *testing.T) {
	s := newPrepared(t, 512, 2, WithLatencyReporter(LatencyReporterFunc(func(float64) {})))
	buf := [][]float64{sine(512, 220, 0.5, 0), sine(512, 330, 0.5, 0)}
	controls := [2]Controls{
		{DriveDB: 20, SagAmount: 0.15, Mix: 0.5, Mode: ModeTriode},
		{DriveDB: 40, SagAmount: 0.3, Mix: 1, Mode: ModeTorture},
	}

	i := 0
	allocs := testing.AllocsPerRun(50, func() {
		_ = s.Process(buf, controls[i&1])
		i++
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %.1f times per block", allocs)
	}
}
