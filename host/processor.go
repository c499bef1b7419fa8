package host

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/dsp/buffer"
	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/effects/valve"
)

// DefaultRampSeconds is the parameter smoothing time.
const DefaultRampSeconds = 0.05

var (
	// ErrUnsupportedLayout is returned by Prepare for anything other than
	// matching mono or stereo input and output.
	ErrUnsupportedLayout = errors.New("host: unsupported channel layout")
	// ErrNotPrepared is returned by Process before a successful Prepare.
	ErrNotPrepared = errors.New("host: processor not prepared")
)

// LatencyListener is told the integer latency the host should compensate.
// It is called from Prepare and, on a mode change, from the audio thread.
type LatencyListener interface {
	LatencyChanged(samples int)
}

// LatencyListenerFunc adapts a function to LatencyListener.
type LatencyListenerFunc func(samples int)

// LatencyChanged implements LatencyListener.
func (f LatencyListenerFunc) LatencyChanged(samples int) { f(samples) }

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorConfig) error

type processorConfig struct {
	listener    LatencyListener
	rampSeconds float64
	params      *Parameters
}

// WithLatencyListener registers l for latency updates.
func WithLatencyListener(l LatencyListener) ProcessorOption {
	return func(cfg *processorConfig) error {
		if l == nil {
			return fmt.Errorf("host: latency listener must not be nil")
		}
		cfg.listener = l
		return nil
	}
}

// WithRampTime sets the smoothing time in seconds. Zero disables smoothing.
func WithRampTime(seconds float64) ProcessorOption {
	return func(cfg *processorConfig) error {
		if seconds < 0 || !core.IsFinite(seconds) {
			return fmt.Errorf("host: ramp time must be >= 0 and finite: %f", seconds)
		}
		cfg.rampSeconds = seconds
		return nil
	}
}

// WithParameters shares an existing parameter set instead of creating one.
func WithParameters(ps *Parameters) ProcessorOption {
	return func(cfg *processorConfig) error {
		if ps == nil {
			return fmt.Errorf("host: parameters must not be nil")
		}
		cfg.params = ps
		return nil
	}
}

const (
	smoothInputTrim = iota
	smoothDrive
	smoothBias
	smoothSag
	smoothOutputTrim
	smoothMix
	numSmoothed
)

// Processor binds a Parameters set to a valve.Saturator.
type Processor struct {
	cfg       processorConfig
	params    *Parameters
	sat       *valve.Saturator
	smoothers [numSmoothed]LinearSmoother

	scratch  *buffer.Buffer
	latency  int
	prepared bool
}

// NewProcessor creates an unprepared processor.
func NewProcessor(opts ...ProcessorOption) (*Processor, error) {
	cfg := processorConfig{rampSeconds: DefaultRampSeconds}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.params == nil {
		cfg.params = NewParameters()
	}

	p := &Processor{cfg: cfg, params: cfg.params}

	sat, err := valve.NewSaturator(valve.WithLatencyReporter(valve.LatencyReporterFunc(p.reportLatency)))
	if err != nil {
		return nil, err
	}
	p.sat = sat
	return p, nil
}

// Params returns the parameter set.
func (p *Processor) Params() *Parameters { return p.params }

// Saturator exposes the underlying engine.
func (p *Processor) Saturator() *valve.Saturator { return p.sat }

// LatencySamples returns the latency last published to the listener.
func (p *Processor) LatencySamples() int { return p.latency }

// SupportsLayout reports whether the channel counts can be processed.
func SupportsLayout(inputChannels, outputChannels int) bool {
	return inputChannels == outputChannels && inputChannels >= 1 && inputChannels <= core.MaxChannels
}

// Prepare allocates for the given stream format. Smoothers start at the
// current parameter values.
func (p *Processor) Prepare(sampleRate float64, blockSize, inputChannels, outputChannels int) error {
	if !SupportsLayout(inputChannels, outputChannels) {
		return fmt.Errorf("%w: %d in, %d out", ErrUnsupportedLayout, inputChannels, outputChannels)
	}

	p.prepared = false
	if err := p.sat.Prepare(sampleRate, blockSize, inputChannels); err != nil {
		return err
	}

	c := p.params.Controls()
	values := [numSmoothed]float64{
		smoothInputTrim:  c.InputTrimDB,
		smoothDrive:      c.DriveDB,
		smoothBias:       c.Bias,
		smoothSag:        c.SagAmount,
		smoothOutputTrim: c.OutputTrimDB,
		smoothMix:        c.Mix,
	}
	for i := range p.smoothers {
		p.smoothers[i].SetCurrentAndTarget(values[i])
		p.smoothers[i].Reset(sampleRate, p.cfg.rampSeconds)
	}

	p.scratch = buffer.New(inputChannels, blockSize)
	p.prepared = true
	return nil
}

// Release resets the engine state. The processor stays prepared.
func (p *Processor) Release() {
	if p.prepared {
		p.sat.Reset()
	}
}

// NextControls implements valve.ControlSource: it retargets every smoother
// from the parameters and advances them by numSamples.
func (p *Processor) NextControls(numSamples int) valve.Controls {
	c := p.params.Controls()
	targets := [numSmoothed]float64{
		smoothInputTrim:  c.InputTrimDB,
		smoothDrive:      c.DriveDB,
		smoothBias:       c.Bias,
		smoothSag:        c.SagAmount,
		smoothOutputTrim: c.OutputTrimDB,
		smoothMix:        c.Mix,
	}

	var cur [numSmoothed]float64
	for i := range p.smoothers {
		p.smoothers[i].SetTarget(targets[i])
		cur[i] = p.smoothers[i].Skip(numSamples)
	}

	return valve.Controls{
		InputTrimDB:  cur[smoothInputTrim],
		DriveDB:      cur[smoothDrive],
		Bias:         cur[smoothBias],
		SagAmount:    cur[smoothSag],
		OutputTrimDB: cur[smoothOutputTrim],
		Mix:          cur[smoothMix],
		Mode:         c.Mode,
	}
}

// Process runs one planar block in place.
func (p *Processor) Process(buf [][]float64) error {
	if !p.prepared {
		return ErrNotPrepared
	}
	return p.sat.ProcessBlock(buf, p)
}

// ProcessInterleaved runs frame-interleaved samples in place, splitting them
// into blocks of at most the prepared block size.
func (p *Processor) ProcessInterleaved(samples []float64) error {
	if !p.prepared {
		return ErrNotPrepared
	}

	numCh := p.scratch.NumChannels()
	if len(samples)%numCh != 0 {
		return fmt.Errorf("host: %d samples is not a whole number of %d-channel frames", len(samples), numCh)
	}

	step := p.scratch.Cap() * numCh
	for off := 0; off < len(samples); off += step {
		chunk := samples[off:min(off+step, len(samples))]
		chans := p.scratch.SetLen(len(chunk) / numCh)
		buffer.Deinterleave(chans, chunk)
		if err := p.sat.ProcessBlock(chans, p); err != nil {
			return err
		}
		buffer.Interleave(chunk, chans)
	}
	return nil
}

func (p *Processor) reportLatency(samples float64) {
	p.latency = int(math.Ceil(samples))
	if p.cfg.listener != nil {
		p.cfg.listener.LatencyChanged(p.latency)
	}
}
