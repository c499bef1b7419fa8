package biquad

import "math"

// Coefficients describes one second-order section with a0 normalised to 1.
// Processing uses Direct Form II Transposed:
//
//	y     = B0*x + z[0]
//	z[0] = B1*x - A1*y + z[1]
//	z[1] = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Identity returns coefficients that pass the input unchanged.
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// Stable reports whether both poles are strictly inside the unit circle.
func (c Coefficients) Stable() bool {
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// Section pairs a coefficient set with its two-element delay line.
type Section struct {
	Coefficients

	z [2]float64
}

// NewSection returns a section with cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample runs one sample through the section.
func (s *Section) ProcessSample(x float64) float64 {
	return df2t(&s.Coefficients, x, &s.z[0], &s.z[1])
}

// ProcessBlock filters buf in place.
func (s *Section) ProcessBlock(buf []float64) {
	s.z[0], s.z[1] = activeKernel()(s.Coefficients, s.z[0], s.z[1], buf)
}

func (s *Section) Reset() { s.z = [2]float64{} }

// State returns a copy of the delay line.
func (s *Section) State() [2]float64 { return s.z }
