package biquad

import "math"

// MagnitudeSquared evaluates |H(e^jw)|^2 at freqHz. Numerator and
// denominator are expanded as real and imaginary parts of the polynomial in
// e^-jw, which avoids complex arithmetic.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	w := 2 * math.Pi * freqHz / sampleRate
	c1, s1 := math.Cos(w), math.Sin(w)
	c2, s2 := math.Cos(2*w), math.Sin(2*w)

	nr := c.B0 + c.B1*c1 + c.B2*c2
	ni := c.B1*s1 + c.B2*s2
	dr := 1 + c.A1*c1 + c.A2*c2
	di := c.A1*s1 + c.A2*s2

	return (nr*nr + ni*ni) / (dr*dr + di*di)
}

// MagnitudeDB is MagnitudeSquared in decibels.
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freqHz, sampleRate))
}

// MagnitudeDB sums the section responses in decibels.
func (c *Chain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	var db float64
	for i := range c.sections {
		db += c.sections[i].MagnitudeDB(freqHz, sampleRate)
	}

	return db
}
