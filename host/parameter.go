package host

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/valvesat/dsp/core"
)

// Parameter is an automatable value with a plain range. The value is held
// in an atomic so it can be written from a control thread while the audio
// thread reads it.
type Parameter struct {
	ID      string
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Step    float64  // 0 for continuous
	Skew    float64  // 0 or 1 for linear mapping
	Choices []string // non-empty for choice parameters

	value atomic.Uint64
}

func newFloatParameter(id, name, unit string, minV, maxV, step, def float64) *Parameter {
	p := &Parameter{ID: id, Name: name, Unit: unit, Min: minV, Max: maxV, Step: step, Default: def}
	p.value.Store(math.Float64bits(def))
	return p
}

func newChoiceParameter(id, name string, choices []string, def int) *Parameter {
	p := &Parameter{
		ID:      id,
		Name:    name,
		Max:     float64(len(choices) - 1),
		Step:    1,
		Default: float64(def),
		Choices: choices,
	}
	p.value.Store(math.Float64bits(float64(def)))
	return p
}

// Value returns the plain value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// Set clamps v to the range, snaps it to Step and stores it. NaN is ignored.
// It returns the stored value.
func (p *Parameter) Set(v float64) float64 {
	if math.IsNaN(v) {
		return p.Value()
	}

	v = p.constrain(v)
	p.value.Store(math.Float64bits(v))
	return v
}

// Reset restores the default.
func (p *Parameter) Reset() { p.value.Store(math.Float64bits(p.Default)) }

func (p *Parameter) constrain(v float64) float64 {
	v = core.Clamp(v, p.Min, p.Max)
	if p.Step > 0 {
		v = core.Clamp(p.Min+p.Step*math.Round((v-p.Min)/p.Step), p.Min, p.Max)
	}
	return v
}

// ToNormalized maps a plain value to [0, 1], applying the skew.
func (p *Parameter) ToNormalized(v float64) float64 {
	if p.Max <= p.Min {
		return 0
	}

	n := (min(max(v, p.Min), p.Max) - p.Min) / (p.Max - p.Min)
	if p.Skew > 0 && p.Skew != 1 {
		n = math.Pow(n, p.Skew)
	}
	return n
}

// FromNormalized maps n in [0, 1] back to a plain value, snapped to Step.
func (p *Parameter) FromNormalized(n float64) float64 {
	n = min(max(n, 0), 1)
	if p.Skew > 0 && p.Skew != 1 && n > 0 {
		n = math.Exp(math.Log(n) / p.Skew)
	}
	return p.constrain(p.Min + (p.Max-p.Min)*n)
}

// Normalized returns the current value in [0, 1].
func (p *Parameter) Normalized() float64 { return p.ToNormalized(p.Value()) }

// SetNormalized sets the value from a normalized position.
func (p *Parameter) SetNormalized(n float64) float64 {
	if math.IsNaN(n) {
		return p.Value()
	}
	return p.Set(p.FromNormalized(n))
}

// Index returns the selected choice index.
func (p *Parameter) Index() int { return int(math.Round(p.Value())) }

// Format renders the current value for display.
func (p *Parameter) Format() string {
	v := p.Value()
	if len(p.Choices) > 0 {
		return p.Choices[p.Index()]
	}

	decimals := 2
	if p.Step > 0 {
		decimals = max(0, int(math.Ceil(-math.Log10(p.Step)-1e-9)))
	}

	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if p.Unit != "" {
		s += " " + p.Unit
	}
	return s
}

// Parse sets the value from text: a number for float parameters, a choice
// label (or index) for choice parameters.
func (p *Parameter) Parse(text string) error {
	if len(p.Choices) > 0 {
		for i, c := range p.Choices {
			if c == text {
				p.Set(float64(i))
				return nil
			}
		}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("host: parameter %s: %w", p.ID, err)
	}
	p.Set(v)
	return nil
}
