package biquad

// Chain runs a fixed number of sections in series. The section count is set
// at construction; retuning only swaps coefficients, so the delay lines keep
// running across coefficient changes and nothing is allocated on the audio
// path.
type Chain struct {
	sections []Section
}

// NewChain builds one section per coefficient set.
func NewChain(coeffs []Coefficients) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs))}
	c.SetCoefficients(coeffs)

	return c
}

// Len is the number of sections in the cascade.
func (c *Chain) Len() int { return len(c.sections) }

// Section returns the i-th section.
func (c *Chain) Section(i int) *Section { return &c.sections[i] }

// SetCoefficients assigns coeffs to the sections in order and reports how
// many were applied. Like copy, the shorter of the two lengths wins: extra
// coefficient sets are ignored and unmatched sections keep their old ones.
func (c *Chain) SetCoefficients(coeffs []Coefficients) int {
	n := min(len(coeffs), len(c.sections))
	for i := range n {
		c.sections[i].Coefficients = coeffs[i]
	}

	return n
}

func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x
}

// ProcessBlock filters buf in place, one full pass per section.
func (c *Chain) ProcessBlock(buf []float64) {
	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset clears every delay line.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}
