// Package dcblock provides a one-pole, one-zero DC blocking filter.
package dcblock

import (
	"fmt"
	"math"
)

// DefaultCutoff is the corner frequency in Hz used by [New].
const DefaultCutoff = 5.0

// Blocker removes DC offset with y[n] = x[n] - x[n-1] + R*y[n-1],
// R = 1 - 2*pi*fc/fs.
type Blocker struct {
	cutoff float64
	r      float64
	x1, y1 float64
}

// New returns a Blocker with the default 5 Hz corner. It passes signal
// unchanged until Prepare is called.
func New() *Blocker {
	return &Blocker{cutoff: DefaultCutoff}
}

// NewWithCutoff returns a Blocker with a custom corner frequency.
func NewWithCutoff(cutoff float64) (*Blocker, error) {
	if cutoff <= 0 || math.IsNaN(cutoff) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("dcblock: cutoff must be > 0 and finite: %f", cutoff)
	}

	return &Blocker{cutoff: cutoff}, nil
}

// Prepare computes the pole radius for sampleRate and clears the state.
func (b *Blocker) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("dcblock: sample rate must be > 0 and finite: %f", sampleRate)
	}

	r := 1 - 2*math.Pi*b.cutoff/sampleRate
	if r <= 0 {
		return fmt.Errorf("dcblock: cutoff %f Hz too high for sample rate %f", b.cutoff, sampleRate)
	}

	b.r = r
	b.Reset()

	return nil
}

// Reset clears the filter memory.
func (b *Blocker) Reset() {
	b.x1 = 0
	b.y1 = 0
}

// R returns the feedback coefficient.
func (b *Blocker) R() float64 { return b.r }

// ProcessSample filters one sample.
func (b *Blocker) ProcessSample(x float64) float64 {
	y := x - b.x1 + b.r*b.y1
	b.x1 = x
	b.y1 = y

	return y
}

// ProcessBlock filters buf in place.
func (b *Blocker) ProcessBlock(buf []float64) {
	x1, y1, r := b.x1, b.y1, b.r
	for i, x := range buf {
		y := x - x1 + r*y1
		x1 = x
		y1 = y
		buf[i] = y
	}

	b.x1, b.y1 = x1, y1
}
