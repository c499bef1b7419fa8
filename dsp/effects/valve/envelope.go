package valve

import (
	"fmt"
	"math"
)

const (
	// DefaultAttack is the envelope attack time constant in seconds.
	DefaultAttack = 0.008
	// DefaultRelease is the envelope release time constant in seconds.
	DefaultRelease = 0.200
)

// EnvelopeFollower tracks the rectified level of a signal with separate
// attack and release one-pole smoothers. It drives the sag of the valve
// supply.
type EnvelopeFollower struct {
	attackTime  float64
	releaseTime float64
	attack      float64
	release     float64
	env         float64
}

// NewEnvelopeFollower returns a follower with the given time constants in
// seconds.
func NewEnvelopeFollower(attackSeconds, releaseSeconds float64) (*EnvelopeFollower, error) {
	if attackSeconds <= 0 || math.IsNaN(attackSeconds) || math.IsInf(attackSeconds, 0) {
		return nil, fmt.Errorf("envelope attack must be > 0 and finite: %f", attackSeconds)
	}
	if releaseSeconds <= 0 || math.IsNaN(releaseSeconds) || math.IsInf(releaseSeconds, 0) {
		return nil, fmt.Errorf("envelope release must be > 0 and finite: %f", releaseSeconds)
	}

	return &EnvelopeFollower{attackTime: attackSeconds, releaseTime: releaseSeconds}, nil
}

// Prepare sets the coefficients for sampleRate and clears the level.
func (e *EnvelopeFollower) Prepare(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("envelope sample rate must be > 0 and finite: %f", sampleRate)
	}

	e.SetSampleRate(sampleRate)
	e.Reset()

	return nil
}

// SetSampleRate recomputes the coefficients and keeps the current level.
// Non-positive or non-finite rates are ignored.
func (e *EnvelopeFollower) SetSampleRate(sampleRate float64) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return
	}

	e.attack = 1 - math.Exp(-1/(sampleRate*e.attackTime))
	e.release = 1 - math.Exp(-1/(sampleRate*e.releaseTime))
}

// Reset clears the envelope level.
func (e *EnvelopeFollower) Reset() { e.env = 0 }

// Process feeds one sample and returns the updated envelope.
func (e *EnvelopeFollower) Process(x float64) float64 {
	r := math.Abs(x)

	c := e.release
	if r > e.env {
		c = e.attack
	}
	e.env += c * (r - e.env)

	return e.env
}

// Envelope returns the current level.
func (e *EnvelopeFollower) Envelope() float64 { return e.env }
