package host

import "math"

// LinearSmoother ramps linearly from its current value to a target over a
// fixed number of samples. A new target restarts the ramp from wherever the
// current value is.
type LinearSmoother struct {
	current       float64
	target        float64
	step          float64
	countdown     int
	stepsToTarget int
}

// Reset sets the ramp length to rampSeconds at sampleRate and jumps to the
// target.
func (s *LinearSmoother) Reset(sampleRate, rampSeconds float64) {
	s.stepsToTarget = 0
	if sampleRate > 0 && rampSeconds > 0 {
		s.stepsToTarget = int(math.Floor(rampSeconds * sampleRate))
	}
	s.SetCurrentAndTarget(s.target)
}

// SetCurrentAndTarget jumps to v without ramping.
func (s *LinearSmoother) SetCurrentAndTarget(v float64) {
	s.current = v
	s.target = v
	s.countdown = 0
	s.step = 0
}

// SetTarget starts a ramp towards v. Setting the current target again does
// not restart the ramp.
func (s *LinearSmoother) SetTarget(v float64) {
	if v == s.target {
		return
	}
	if s.stepsToTarget <= 0 {
		s.SetCurrentAndTarget(v)
		return
	}

	s.target = v
	s.countdown = s.stepsToTarget
	s.step = (s.target - s.current) / float64(s.countdown)
}

// Next advances one sample and returns the new value.
func (s *LinearSmoother) Next() float64 {
	if s.countdown <= 0 {
		return s.target
	}

	s.countdown--
	if s.countdown == 0 {
		s.current = s.target
	} else {
		s.current += s.step
	}
	return s.current
}

// Skip advances n samples and returns the value reached.
func (s *LinearSmoother) Skip(n int) float64 {
	if n <= 0 {
		return s.current
	}
	if n >= s.countdown {
		s.SetCurrentAndTarget(s.target)
		return s.target
	}

	s.current += s.step * float64(n)
	s.countdown -= n
	return s.current
}

// Current returns the value reached so far.
func (s *LinearSmoother) Current() float64 { return s.current }

// Target returns the value being ramped towards.
func (s *LinearSmoother) Target() float64 { return s.target }

// IsSmoothing reports whether a ramp is in progress.
func (s *LinearSmoother) IsSmoothing() bool { return s.countdown > 0 }
