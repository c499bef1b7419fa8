// Package thd measures harmonic distortion of a periodic signal and profiles
// the harmonic signature of a block processor driven by a test tone.
package thd

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/window"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
)

// Config holds THD calculation parameters.
type Config struct {
	SampleRate float64
	// FFTSize defaults to the next power of two of the signal length.
	FFTSize int
	// FundamentalFreq pins the fundamental. Zero picks the strongest bin in
	// range.
	FundamentalFreq float64
	RangeLowerFreq  float64
	RangeUpperFreq  float64
	// CaptureBins is the half-width summed around each peak. Zero uses the
	// main-lobe width of the window.
	CaptureBins  int
	MaxHarmonics int
	Window       window.Type
}

// Result holds THD measurement results. Ratios are relative to the
// fundamental level.
type Result struct {
	FundamentalFreq  float64
	FundamentalLevel float64
	THD              float64
	THDN             float64
	THDdB            float64
	THDNdB           float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
	SINAD            float64
	// Harmonics[i] is the ratio of harmonic i+2.
	Harmonics []float64
}

// Harmonic returns the ratio of the k-th harmonic, or 0 if it was not
// measured.
func (r Result) Harmonic(k int) float64 {
	i := k - 2
	if i < 0 || i >= len(r.Harmonics) {
		return 0
	}
	return r.Harmonics[i]
}

// EvenOddRatio returns EvenHD/OddHD, or +Inf for purely even distortion.
func (r Result) EvenOddRatio() float64 {
	if r.OddHD <= 0 {
		if r.EvenHD > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return r.EvenHD / r.OddHD
}

// Calculator performs THD analysis. It caches the FFT plan and buffers
// between calls and is not safe for concurrent use.
type Calculator struct {
	cfg Config

	plan     *algofft.Plan[complex128]
	planSize int
	frame    []float64
	in, out  []complex128
	mag      []float64
}

// NewCalculator creates a new THD calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: normalizeConfig(cfg)}
}

// Config returns the normalised configuration.
func (c *Calculator) Config() Config { return c.cfg }

// AnalyzeSignal is a one-shot analysis of a time-domain signal.
func AnalyzeSignal(signal []float64, cfg Config) (Result, error) {
	return NewCalculator(cfg).AnalyzeSignal(signal)
}

// AnalyzeSignal windows signal, transforms it and evaluates the spectrum.
// Signals longer than the FFT size are truncated.
func (c *Calculator) AnalyzeSignal(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, nil
	}

	fftSize := c.cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}
	if fftSize <= 1 {
		return Result{}, nil
	}

	if err := c.ensurePlan(fftSize); err != nil {
		return Result{}, err
	}

	frame := c.frame[:min(len(signal), fftSize)]
	copy(frame, signal)
	window.Apply(c.cfg.Window, frame)
	clear(c.in)
	for i, v := range frame {
		c.in[i] = complex(v, 0)
	}

	if err := c.plan.Forward(c.out, c.in); err != nil {
		return Result{}, fmt.Errorf("thd: fft: %w", err)
	}

	for i := range c.mag {
		x := c.out[i]
		c.mag[i] = real(x)*real(x) + imag(x)*imag(x)
	}

	cfg := c.cfg
	cfg.FFTSize = fftSize
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(fftSize)
	}
	return evaluate(c.mag, cfg), nil
}

func (c *Calculator) ensurePlan(size int) error {
	if c.plan != nil && c.planSize == size {
		return nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("thd: fft plan of size %d: %w", size, err)
	}

	c.plan = plan
	c.planSize = size
	c.frame = make([]float64, size)
	c.in = make([]complex128, size)
	c.out = make([]complex128, size)
	c.mag = make([]float64, size/2+1)
	return nil
}

// CalculateFromMagnitude evaluates a squared-magnitude spectrum holding the
// bins [0, Nyquist].
func (c *Calculator) CalculateFromMagnitude(magSquared []float64) Result {
	return evaluate(magSquared, c.cfg)
}

// spectrum is a squared-magnitude half spectrum with its bin spacing.
type spectrum struct {
	power []float64
	binHz float64
}

func (s spectrum) bin(freq float64) int { return int(math.Round(freq / s.binHz)) }

// amplitude sums bin magnitudes over [lo, hi], clipped to the spectrum.
func (s spectrum) amplitude(lo, hi int) float64 {
	lo, hi = max(lo, 0), min(hi, len(s.power)-1)
	if lo > hi {
		return 0
	}

	var sum float64
	for _, p := range s.power[lo : hi+1] {
		if p > 0 {
			sum += math.Sqrt(p)
		}
	}
	return sum
}

// strongest returns the loudest bin in [lo, hi].
func (s spectrum) strongest(lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if s.power[i] > s.power[best] {
			best = i
		}
	}
	return best
}

func evaluate(magSquared []float64, cfg Config) Result {
	if len(magSquared) < 2 {
		return Result{}
	}
	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 2 * (len(magSquared) - 1)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = float64(cfg.FFTSize)
	}

	sp := spectrum{power: magSquared, binHz: cfg.SampleRate / float64(cfg.FFTSize)}
	top := len(magSquared) - 1
	lo := min(max(sp.bin(cfg.RangeLowerFreq), 1), top)
	hi := min(max(sp.bin(cfg.RangeUpperFreq), lo), top)

	fund := sp.strongest(lo, hi)
	if cfg.FundamentalFreq > 0 {
		fund = min(max(sp.bin(cfg.FundamentalFreq), lo), hi)
	}

	width := cfg.CaptureBins
	if width <= 0 {
		width = window.Info(cfg.Window).MainLobeBins
	}
	// Keep neighbouring harmonic windows from overlapping at low bins.
	width = min(width, fund/2)

	res := Result{FundamentalFreq: float64(fund) * sp.binHz}
	ref := sp.amplitude(fund-width, fund+width)
	if ref <= 0 {
		return res
	}

	var odd, even float64
	for k := 2; k*fund <= hi; k++ {
		if cfg.MaxHarmonics > 0 && k > cfg.MaxHarmonics+1 {
			break
		}

		var a float64
		if b := k * fund; b >= lo {
			a = sp.amplitude(b-width, b+width)
		}
		if k%2 == 0 {
			even += a
		} else {
			odd += a
		}
		res.Harmonics = append(res.Harmonics, a/ref)
	}

	distortion := odd + even
	residual := max(sp.amplitude(lo, hi)-ref, 0)

	res.FundamentalLevel = ref
	res.THD = distortion / ref
	res.THDN = residual / ref
	res.THDdB = core.LinearToDB(res.THD)
	res.THDNdB = core.LinearToDB(res.THDN)
	res.OddHD = odd / ref
	res.EvenHD = even / ref
	res.Noise = max(residual-distortion, 0) / ref
	res.SINAD = -res.THDNdB
	return res
}

func normalizeConfig(cfg Config) Config {
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}
	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}
	cfg.RangeUpperFreq = max(cfg.RangeUpperFreq, cfg.RangeLowerFreq)
	cfg.CaptureBins = max(cfg.CaptureBins, 0)
	cfg.MaxHarmonics = max(cfg.MaxHarmonics, 0)
	if !cfg.Window.Valid() {
		cfg.Window = window.TypeHann
	}
	return cfg
}

func nextPowerOf2(n int) int {
	return 1 << bits.Len(uint(n-1))
}
