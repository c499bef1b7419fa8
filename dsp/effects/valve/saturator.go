package valve

import (
	"errors"
	"fmt"

	"github.com/cwbudde/valvesat/dsp/buffer"
	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/filter/dcblock"
	"github.com/cwbudde/valvesat/dsp/oversample"
)

var (
	// ErrNotPrepared is returned by Process before a successful Prepare.
	ErrNotPrepared = errors.New("valve: saturator not prepared")
	// ErrChannelMismatch indicates a block whose channel count differs from
	// the prepared one, or whose channels differ in length.
	ErrChannelMismatch = errors.New("valve: channel count mismatch")
	// ErrBlockTooLarge indicates a block longer than the prepared block size.
	ErrBlockTooLarge = errors.New("valve: block exceeds prepared size")
)

// Controls are the per-block parameter values. Ranges are enforced by the
// host: trims [-24, 24] dB, drive [0, 60] dB, bias [-0.6, 0.6],
// sag [0, 0.6], mix [0, 1].
type Controls struct {
	InputTrimDB  float64
	DriveDB      float64
	Bias         float64
	SagAmount    float64
	OutputTrimDB float64
	Mix          float64
	Mode         Mode
}

// DefaultControls returns the factory settings.
func DefaultControls() Controls {
	return Controls{
		DriveDB:   20,
		SagAmount: 0.15,
		Mix:       1,
		Mode:      ModeTriode,
	}
}

// ControlSource yields the controls for the next block of numSamples
// samples. Implementations advance their smoothing by that amount.
type ControlSource interface {
	NextControls(numSamples int) Controls
}

// FixedControls is a ControlSource that always returns the same values.
type FixedControls Controls

// NextControls implements ControlSource.
func (f FixedControls) NextControls(int) Controls { return Controls(f) }

// LatencyReporter receives the saturator latency in samples whenever it
// changes. It is called from Prepare and from Process on the audio thread
// and must not block.
type LatencyReporter interface {
	ReportLatency(samples float64)
}

// LatencyReporterFunc adapts a function to LatencyReporter.
type LatencyReporterFunc func(samples float64)

// ReportLatency implements LatencyReporter.
func (f LatencyReporterFunc) ReportLatency(samples float64) { f(samples) }

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	reporter LatencyReporter
	attack   float64
	release  float64
}

func defaultConfig() config {
	return config{attack: DefaultAttack, release: DefaultRelease}
}

// WithLatencyReporter registers r to be told about latency changes.
func WithLatencyReporter(r LatencyReporter) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("valve: latency reporter must not be nil")
		}
		cfg.reporter = r
		return nil
	}
}

// WithEnvelopeTimes overrides the sag envelope attack and release times in
// seconds.
func WithEnvelopeTimes(attack, release float64) Option {
	return func(cfg *config) error {
		if !(attack > 0) || !core.IsFinite(attack) {
			return fmt.Errorf("valve: envelope attack must be > 0 and finite: %f", attack)
		}
		if !(release > 0) || !core.IsFinite(release) {
			return fmt.Errorf("valve: envelope release must be > 0 and finite: %f", release)
		}
		cfg.attack = attack
		cfg.release = release
		return nil
	}
}

// Saturator is the valve saturation engine.
type Saturator struct {
	cfg config

	prepared    bool
	sampleRate  float64
	blockSize   int
	numChannels int

	preDC  [core.MaxChannels]*dcblock.Blocker
	postDC [core.MaxChannels]*dcblock.Blocker
	env    [core.MaxChannels]*EnvelopeFollower
	emph   *emphasis

	// Indexed by stage count; both 4x and 8x contexts live for the whole
	// session so mode switches never rebuild them.
	ovs     [oversample.MaxStages + 1]*oversample.Oversampler
	latency [oversample.MaxStages + 1]float64

	dry      *buffer.Buffer
	dryDelay [core.MaxChannels]*fractionalDelay

	lastMode Mode
}

// NewSaturator creates an unprepared saturator.
func NewSaturator(opts ...Option) (*Saturator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s := &Saturator{cfg: cfg, emph: newEmphasis()}

	for ch := range core.MaxChannels {
		s.preDC[ch] = dcblock.New()
		s.postDC[ch] = dcblock.New()

		env, err := NewEnvelopeFollower(cfg.attack, cfg.release)
		if err != nil {
			return nil, err
		}
		s.env[ch] = env
	}

	for _, stages := range usedStages() {
		lat, err := oversample.RoundTripLatency(stages)
		if err != nil {
			return nil, err
		}
		s.latency[stages] = lat
	}

	return s, nil
}

// usedStages lists the oversampling stage counts any voicing can select.
func usedStages() []int {
	var seen [oversample.MaxStages + 1]bool
	out := make([]int, 0, 2)
	add := func(v *voicing) {
		if !seen[v.stages] {
			seen[v.stages] = true
			out = append(out, v.stages)
		}
	}
	for i := range modeTable {
		add(&modeTable[i])
	}
	add(&fallbackVoicing)
	return out
}

// Prepare allocates all working state for the given stream format and
// resets the signal path. Prepare publishes the latency of the initial
// Triode voicing.
func (s *Saturator) Prepare(sampleRate float64, blockSize, numChannels int) error {
	cfg := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: blockSize, NumChannels: numChannels}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("valve: %w", err)
	}

	s.prepared = false

	maxLatency := 0.0
	for _, stages := range usedStages() {
		ovs, err := oversample.New(stages, numChannels, blockSize)
		if err != nil {
			return err
		}
		s.ovs[stages] = ovs
		maxLatency = max(maxLatency, s.latency[stages])
	}

	for ch := range core.MaxChannels {
		if err := s.preDC[ch].Prepare(sampleRate); err != nil {
			return err
		}
		if err := s.postDC[ch].Prepare(sampleRate); err != nil {
			return err
		}
		if err := s.env[ch].Prepare(sampleRate); err != nil {
			return err
		}
		s.dryDelay[ch] = newFractionalDelay(maxLatency)
	}

	s.dry = buffer.New(numChannels, blockSize)
	s.sampleRate = sampleRate
	s.blockSize = blockSize
	s.numChannels = numChannels
	s.prepared = true

	s.Reset()
	s.setMode(ModeTriode)

	return nil
}

// Reset clears all filter, envelope, oversampler and delay state without
// reallocating.
func (s *Saturator) Reset() {
	for ch := range core.MaxChannels {
		s.preDC[ch].Reset()
		s.postDC[ch].Reset()
		s.env[ch].Reset()
		if s.dryDelay[ch] != nil {
			s.dryDelay[ch].reset()
		}
	}

	s.emph.reset()

	for _, ovs := range s.ovs {
		if ovs != nil {
			ovs.Reset()
		}
	}
}

// LatencyInSamples returns the processing delay of mode m in samples at the
// base rate. It is fractional; hosts typically round up.
func (s *Saturator) LatencyInSamples(m Mode) float64 {
	return s.latency[voicingFor(m).stages]
}

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (s *Saturator) SampleRate() float64 { return s.sampleRate }

// BlockSize returns the prepared maximum block size.
func (s *Saturator) BlockSize() int { return s.blockSize }

// NumChannels returns the prepared channel count.
func (s *Saturator) NumChannels() int { return s.numChannels }

// Mode returns the voicing used by the most recent block.
func (s *Saturator) Mode() Mode { return s.lastMode }

func (s *Saturator) setMode(m Mode) {
	s.lastMode = m

	lat := s.LatencyInSamples(m)
	for ch := range s.dryDelay {
		s.dryDelay[ch].setDelay(lat)
	}

	if s.cfg.reporter != nil {
		s.cfg.reporter.ReportLatency(lat)
	}
}

// ProcessBlock pulls the controls for this block from src and processes
// buf.
func (s *Saturator) ProcessBlock(buf [][]float64, src ControlSource) error {
	n := 0
	if len(buf) > 0 {
		n = len(buf[0])
	}
	return s.Process(buf, src.NextControls(n))
}

// Process runs one block through the saturator in place. buf must hold
// NumChannels channels of equal length no larger than BlockSize. Non-finite
// samples are not sanitised.
func (s *Saturator) Process(buf [][]float64, c Controls) error {
	if !s.prepared {
		return ErrNotPrepared
	}
	if len(buf) != s.numChannels {
		return ErrChannelMismatch
	}

	n := core.FrameLen(buf)
	if n < 0 {
		return ErrChannelMismatch
	}
	if n > s.blockSize {
		return ErrBlockTooLarge
	}
	if n == 0 {
		return nil
	}

	if c.Mode != s.lastMode {
		s.setMode(c.Mode)
	}
	v := voicingFor(c.Mode)

	s.dry.CopyFrom(buf)

	buffer.ApplyGain(buf, core.DBToLinear(c.InputTrimDB))
	for ch, data := range buf {
		s.preDC[ch].ProcessBlock(data)
	}
	s.emph.processPre(buf, s.sampleRate, v)

	ovs := s.ovs[v.stages]
	hi, err := ovs.ProcessUp(buf)
	if err != nil {
		return err
	}

	drive := core.DBToLinear(c.DriveDB)
	osRate := s.sampleRate * float64(ovs.Factor())
	curve := v.curve
	for ch, data := range hi {
		env := s.env[ch]
		env.SetSampleRate(osRate)
		for i, x := range data {
			e := env.Process(x)
			effDrive := drive * (1 - c.SagAmount*e)
			data[i] = curve.Shape((x + c.Bias) * effDrive)
		}
	}

	if err := ovs.ProcessDown(buf); err != nil {
		return err
	}

	s.emph.processPost(buf, s.sampleRate, v)
	for ch, data := range buf {
		s.postDC[ch].ProcessBlock(data)
	}
	buffer.ApplyGain(buf, core.DBToLinear(c.OutputTrimDB))

	dry := s.dry.Channels()
	for ch, data := range dry {
		s.dryDelay[ch].processBlock(data)
	}
	if c.Mix < 1 {
		buffer.Crossfade(buf, dry, c.Mix)
	}

	return nil
}
