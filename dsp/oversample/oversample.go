package oversample

import (
	"errors"
	"fmt"

	"github.com/cwbudde/valvesat/dsp/filter/halfband"
)

// MaxStages bounds the oversampling factor to 16x.
const MaxStages = 4

var (
	// ErrChannelMismatch indicates a block whose channel count differs from
	// the one the oversampler was built for.
	ErrChannelMismatch = errors.New("oversample: channel count mismatch")
	// ErrBlockTooLarge indicates a block longer than the configured maximum.
	ErrBlockTooLarge = errors.New("oversample: block exceeds maximum size")
	// ErrRaggedBlock indicates channels of different lengths.
	ErrRaggedBlock = errors.New("oversample: channels differ in length")
)

// StageSpec holds the half-band design parameters of one 2x stage.
type StageSpec struct {
	UpTransition      float64
	UpAttenuationDB   float64
	DownTransition    float64
	DownAttenuationDB float64
}

// DefaultStageSpec returns the design used for stage k, where k = 0 is the
// stage running at the base rate. The first stage has the narrowest
// transition band since its images land closest to the audio band.
func DefaultStageSpec(k int) StageSpec {
	scale := 1.0
	if k == 0 {
		scale = 0.5
	}

	return StageSpec{
		UpTransition:      0.10 * scale,
		UpAttenuationDB:   75 + 10*float64(k),
		DownTransition:    0.12 * scale,
		DownAttenuationDB: 70 + 10*float64(k),
	}
}

// Oversampler converts planar blocks to 2^stages times the base rate and
// back.
type Oversampler struct {
	stages      int
	factor      int
	numChannels int
	maxBlock    int

	up   [][]*halfband.Upsampler // [channel][stage]
	down [][]*halfband.Downsampler

	// Ping-pong buffers, each maxBlock*factor long.
	bufA, bufB [][]float64
	views      [][]float64
	n          int

	latency float64
}

// New creates an oversampler with the given number of 2x stages for
// numChannels channels of at most maxBlock base-rate samples.
func New(stages, numChannels, maxBlock int) (*Oversampler, error) {
	if stages < 1 || stages > MaxStages {
		return nil, fmt.Errorf("oversample: stages must be in [1, %d]: %d", MaxStages, stages)
	}
	if numChannels < 1 {
		return nil, fmt.Errorf("oversample: channel count must be >= 1: %d", numChannels)
	}
	if maxBlock < 1 {
		return nil, fmt.Errorf("oversample: max block must be >= 1: %d", maxBlock)
	}

	o := &Oversampler{
		stages:      stages,
		factor:      1 << stages,
		numChannels: numChannels,
		maxBlock:    maxBlock,
		up:          make([][]*halfband.Upsampler, numChannels),
		down:        make([][]*halfband.Downsampler, numChannels),
		bufA:        make([][]float64, numChannels),
		bufB:        make([][]float64, numChannels),
		views:       make([][]float64, numChannels),
	}

	upCoeffs, downCoeffs, err := designStages(stages)
	if err != nil {
		return nil, err
	}
	o.latency = roundTripLatency(upCoeffs, downCoeffs)

	for ch := range numChannels {
		o.up[ch] = make([]*halfband.Upsampler, stages)
		o.down[ch] = make([]*halfband.Downsampler, stages)
		for k := range stages {
			if o.up[ch][k], err = halfband.NewUpsampler(upCoeffs[k]); err != nil {
				return nil, err
			}
			if o.down[ch][k], err = halfband.NewDownsampler(downCoeffs[k]); err != nil {
				return nil, err
			}
		}

		o.bufA[ch] = make([]float64, maxBlock*o.factor)
		o.bufB[ch] = make([]float64, maxBlock*o.factor)
	}

	return o, nil
}

// RoundTripLatency returns the DC group delay in base-rate samples of an
// up/down pass through the given number of stages, without building an
// Oversampler.
func RoundTripLatency(stages int) (float64, error) {
	if stages < 1 || stages > MaxStages {
		return 0, fmt.Errorf("oversample: stages must be in [1, %d]: %d", MaxStages, stages)
	}

	up, down, err := designStages(stages)
	if err != nil {
		return 0, err
	}

	return roundTripLatency(up, down), nil
}

func designStages(stages int) (up, down [][]float64, err error) {
	up = make([][]float64, stages)
	down = make([][]float64, stages)
	for k := range stages {
		spec := DefaultStageSpec(k)

		up[k], err = halfband.Design(spec.UpTransition, spec.UpAttenuationDB)
		if err != nil {
			return nil, nil, fmt.Errorf("oversample: stage %d up: %w", k, err)
		}
		down[k], err = halfband.Design(spec.DownTransition, spec.DownAttenuationDB)
		if err != nil {
			return nil, nil, fmt.Errorf("oversample: stage %d down: %w", k, err)
		}
	}

	return up, down, nil
}

// roundTripLatency sums each stage's delay, scaled from its high rate
// 2^(k+1) back to the base rate.
func roundTripLatency(up, down [][]float64) float64 {
	var latency float64
	for k := range up {
		scale := float64(uint(2) << k)
		latency += halfband.GroupDelay(up[k]) / scale
		latency += (halfband.GroupDelay(down[k]) - 1) / scale
	}

	return latency
}

// Factor returns the rate multiplier 2^stages.
func (o *Oversampler) Factor() int { return o.factor }

// Stages returns the number of 2x stages.
func (o *Oversampler) Stages() int { return o.stages }

// NumChannels returns the channel count.
func (o *Oversampler) NumChannels() int { return o.numChannels }

// MaxBlock returns the largest accepted base-rate block length.
func (o *Oversampler) MaxBlock() int { return o.maxBlock }

// Latency returns the round-trip DC group delay in base-rate samples.
func (o *Oversampler) Latency() float64 { return o.latency }

// ProcessUp interpolates in to the oversampled rate and returns per-channel
// views of len(in[ch])*Factor() samples. The views stay valid until the next
// ProcessUp call; they may be modified in place before ProcessDown.
func (o *Oversampler) ProcessUp(in [][]float64) ([][]float64, error) {
	if len(in) != o.numChannels {
		return nil, ErrChannelMismatch
	}

	n := len(in[0])
	if n > o.maxBlock {
		return nil, ErrBlockTooLarge
	}
	for _, c := range in[1:] {
		if len(c) != n {
			return nil, ErrRaggedBlock
		}
	}

	for ch := range o.numChannels {
		src := in[ch]
		dst, spare := o.bufA[ch], o.bufB[ch]
		for k := range o.stages {
			out := dst[:2*len(src)]
			o.up[ch][k].ProcessBlock(out, src)
			src = out
			dst, spare = spare, dst
		}

		o.views[ch] = src
	}

	o.n = n

	return o.views, nil
}

// ProcessDown decimates the views returned by the last ProcessUp into out,
// which must hold the same number of samples per channel as that block.
func (o *Oversampler) ProcessDown(out [][]float64) error {
	if len(out) != o.numChannels {
		return ErrChannelMismatch
	}
	for _, c := range out {
		if len(c) < o.n {
			return ErrBlockTooLarge
		}
	}

	for ch := range o.numChannels {
		work := o.views[ch]
		for k := o.stages - 1; k > 0; k-- {
			half := work[:len(work)/2]
			o.down[ch][k].ProcessBlock(half, work)
			work = half
		}

		o.down[ch][0].ProcessBlock(out[ch][:o.n], work)
	}

	return nil
}

// Reset clears every stage's filter memory.
func (o *Oversampler) Reset() {
	for ch := range o.numChannels {
		for k := range o.stages {
			o.up[ch][k].Reset()
			o.down[ch][k].Reset()
		}
	}
}
