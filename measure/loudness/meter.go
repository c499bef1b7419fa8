// Package loudness measures programme loudness per ITU-R BS.1770 / EBU R128.
package loudness

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/filter/biquad"
)

// K-weighting prefilter parameters. Designed with kWeighting they give the
// BS.1770 48 kHz coefficients exactly and track them at other rates.
const (
	shelfFreq   = 1681.974450955533
	shelfGainDB = 3.999843853973347
	shelfQ      = 0.7071752369554196
	hpfFreq     = 38.13547087602444
	hpfQ        = 0.5003270373238773
)

const (
	momentarySeconds = 0.4
	shortTermSeconds = 3.0
	gateStepSeconds  = 0.1 // 75% block overlap

	absoluteGate = -70.0
	relativeGate = -10.0

	minSampleRate = 8000.0
)

// Floor is the lowest level Momentary and ShortTerm report.
const Floor = -120.0

// ErrChannels is returned for frames with the wrong channel count.
var ErrChannels = errors.New("loudness: channel mismatch")

// Meter accumulates K-weighted power for momentary, short-term and gated
// integrated loudness. Channel weights are 1, so only mono and stereo
// layouts are measured correctly.
type Meter struct {
	sampleRate float64
	filters    []*biquad.Chain

	mom, short ring

	blockStep int
	sinceStep int
	seen      int
	blocks    []float64

	peak float64
}

// ring is a sliding sum of the last len(buf) frame powers.
type ring struct {
	buf []float64
	pos int
	sum float64
}

func newRing(n int) ring { return ring{buf: make([]float64, n)} }

func (r *ring) push(v float64) {
	r.sum += v - r.buf[r.pos]
	if r.sum < 0 {
		r.sum = 0
	}
	r.buf[r.pos] = v
	r.pos = (r.pos + 1) % len(r.buf)
}

func (r *ring) mean() float64 { return r.sum / float64(len(r.buf)) }

func (r *ring) reset() {
	clear(r.buf)
	r.pos, r.sum = 0, 0
}

// NewMeter returns a meter for numChannels channels at sampleRate.
func NewMeter(sampleRate float64, numChannels int) (*Meter, error) {
	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: 1, NumChannels: numChannels}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("loudness: %w", err)
	}
	if sampleRate < minSampleRate {
		return nil, fmt.Errorf("loudness: sample rate %g Hz below %g Hz", sampleRate, minSampleRate)
	}

	k := kWeighting(sampleRate)

	m := &Meter{
		sampleRate: sampleRate,
		filters:    make([]*biquad.Chain, numChannels),
		mom:        newRing(int(math.Round(momentarySeconds * sampleRate))),
		short:      newRing(int(math.Round(shortTermSeconds * sampleRate))),
		blockStep:  max(int(math.Round(gateStepSeconds*sampleRate)), 1),
	}
	for ch := range m.filters {
		m.filters[ch] = biquad.NewChain(k)
	}
	return m, nil
}

// kWeighting returns the two-stage prefilter: a high shelf modelling the
// head followed by the RLB highpass.
func kWeighting(sampleRate float64) []biquad.Coefficients {
	k := math.Tan(math.Pi * shelfFreq / sampleRate)
	vh := math.Pow(10, shelfGainDB/20)
	vb := math.Pow(vh, 0.4996667741545416)
	a0 := 1 + k/shelfQ + k*k
	shelf := biquad.Coefficients{
		B0: (vh + vb*k/shelfQ + k*k) / a0,
		B1: 2 * (k*k - vh) / a0,
		B2: (vh - vb*k/shelfQ + k*k) / a0,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/shelfQ + k*k) / a0,
	}

	k = math.Tan(math.Pi * hpfFreq / sampleRate)
	a0 = 1 + k/hpfQ + k*k
	hpf := biquad.Coefficients{
		B0: 1,
		B1: -2,
		B2: 1,
		A1: 2 * (k*k - 1) / a0,
		A2: (1 - k/hpfQ + k*k) / a0,
	}
	return []biquad.Coefficients{shelf, hpf}
}

// NumChannels returns the channel count the meter was built for.
func (m *Meter) NumChannels() int { return len(m.filters) }

// Reset clears all measurements.
func (m *Meter) Reset() {
	for _, f := range m.filters {
		f.Reset()
	}
	m.mom.reset()
	m.short.reset()
	m.sinceStep, m.seen = 0, 0
	m.blocks = m.blocks[:0]
	m.peak = 0
}

func (m *Meter) frame(power float64) {
	m.mom.push(power)
	m.short.push(power)
	m.seen++

	m.sinceStep++
	if m.sinceStep < m.blockStep {
		return
	}
	m.sinceStep = 0
	if m.seen >= len(m.mom.buf) {
		m.blocks = append(m.blocks, m.mom.mean())
	}
}

// Process measures planar channel buffers of equal length.
func (m *Meter) Process(buf [][]float64) error {
	if len(buf) != len(m.filters) {
		return fmt.Errorf("%w: got %d channels, want %d", ErrChannels, len(buf), len(m.filters))
	}
	n := core.FrameLen(buf)
	if n < 0 {
		return fmt.Errorf("%w: ragged channel buffers", ErrChannels)
	}
	for i := range n {
		var power float64
		for ch, f := range m.filters {
			x := buf[ch][i]
			m.peak = max(m.peak, math.Abs(x))
			y := f.ProcessSample(x)
			power += y * y
		}
		m.frame(power)
	}
	return nil
}

// ProcessInterleaved measures interleaved frames.
func (m *Meter) ProcessInterleaved(samples []float64) error {
	numCh := len(m.filters)
	if len(samples)%numCh != 0 {
		return fmt.Errorf("%w: %d samples is not a whole number of %d-channel frames", ErrChannels, len(samples), numCh)
	}
	for off := 0; off < len(samples); off += numCh {
		var power float64
		for ch, f := range m.filters {
			x := samples[off+ch]
			m.peak = max(m.peak, math.Abs(x))
			y := f.ProcessSample(x)
			power += y * y
		}
		m.frame(power)
	}
	return nil
}

// Momentary returns the loudness of the last 400 ms in LUFS.
func (m *Meter) Momentary() float64 { return toLUFS(m.mom.mean()) }

// ShortTerm returns the loudness of the last 3 s in LUFS.
func (m *Meter) ShortTerm() float64 { return toLUFS(m.short.mean()) }

// Integrated returns the gated programme loudness since Reset in LUFS, or
// -Inf when no block passes the gates.
func (m *Meter) Integrated() float64 {
	gated := func(threshold float64) (float64, int) {
		var sum float64
		var n int
		for _, b := range m.blocks {
			if toLUFS(b) > threshold {
				sum += b
				n++
			}
		}
		return sum, n
	}

	sum, n := gated(absoluteGate)
	if n == 0 {
		return math.Inf(-1)
	}
	sum, n = gated(toLUFS(sum/float64(n)) + relativeGate)
	if n == 0 {
		return math.Inf(-1)
	}
	return toLUFS(sum / float64(n))
}

// SamplePeak returns the largest absolute input sample since Reset.
func (m *Meter) SamplePeak() float64 { return m.peak }

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return Floor
	}
	return max(-0.691+10*math.Log10(meanSquare), Floor)
}
