package thd

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/dsp/buffer"
)

// Processor processes planar blocks in place.
type Processor interface {
	Process(buf [][]float64) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(buf [][]float64) error

// Process implements Processor.
func (f ProcessorFunc) Process(buf [][]float64) error { return f(buf) }

// ProfileConfig configures a harmonic profile run.
type ProfileConfig struct {
	Config

	// Amplitude is the test tone peak level. Defaults to 0.5.
	Amplitude float64
	// NumChannels fed with the tone. Channel 0 is analysed. Defaults to 1.
	NumChannels int
	// BlockSize of each Process call. Defaults to 512.
	BlockSize int
	// Settle is the number of output samples discarded before analysis.
	// Defaults to half a second.
	Settle int
}

// Profile drives p with a sine at cfg.FundamentalFreq (default 1 kHz, moved
// to the nearest bin centre), lets it settle and analyses the last FFTSize
// samples of channel 0.
func Profile(p Processor, cfg ProfileConfig) (Result, error) {
	if p == nil {
		return Result{}, errors.New("thd: nil processor")
	}
	if cfg.SampleRate <= 0 {
		return Result{}, fmt.Errorf("thd: sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.FFTSize <= 0 {
		cfg.FFTSize = 4096
	}
	if cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return Result{}, fmt.Errorf("thd: FFT size must be a power of two: %d", cfg.FFTSize)
	}
	if cfg.FundamentalFreq <= 0 {
		cfg.FundamentalFreq = 1000
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = 0.5
	}
	if cfg.NumChannels <= 0 {
		cfg.NumChannels = 1
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 512
	}
	if cfg.Settle <= 0 {
		cfg.Settle = int(cfg.SampleRate / 2)
	}

	binHz := cfg.SampleRate / float64(cfg.FFTSize)
	cfg.FundamentalFreq = math.Max(1, math.Round(cfg.FundamentalFreq/binHz)) * binHz

	total := cfg.Settle + cfg.FFTSize
	captured := make([]float64, 0, cfg.FFTSize)
	buf := buffer.New(cfg.NumChannels, cfg.BlockSize)
	step := 2 * math.Pi * cfg.FundamentalFreq / cfg.SampleRate

	for off := 0; off < total; off += cfg.BlockSize {
		n := min(cfg.BlockSize, total-off)
		chans := buf.SetLen(n)
		for i := range n {
			v := cfg.Amplitude * math.Sin(step*float64(off+i))
			for ch := range chans {
				chans[ch][i] = v
			}
		}

		if err := p.Process(chans); err != nil {
			return Result{}, fmt.Errorf("thd: process at sample %d: %w", off, err)
		}

		for i, v := range chans[0] {
			if off+i >= cfg.Settle {
				captured = append(captured, v)
			}
		}
	}

	return NewCalculator(cfg.Config).AnalyzeSignal(captured)
}
