package halfband

// branches holds the allpass cascade state shared by the up- and
// downsampler. x[i] and y[i] are the previous input and output of section i,
// stepped at the low rate.
type branches struct {
	coeffs []float64
	x      []float64
	y      []float64
}

func newBranches(coeffs []float64) (branches, error) {
	if err := validateCoefficients(coeffs); err != nil {
		return branches{}, err
	}

	n := len(coeffs)

	return branches{
		coeffs: append([]float64(nil), coeffs...),
		x:      make([]float64, n),
		y:      make([]float64, n),
	}, nil
}

// step pushes spl0 through the even sections and spl1 through the odd ones.
func (b *branches) step(spl0, spl1 float64) (out0, out1 float64) {
	c, x, y := b.coeffs, b.x, b.y

	n := len(c)
	i := 0
	for ; i+1 < n; i += 2 {
		t0 := (spl0-y[i])*c[i] + x[i]
		x[i] = spl0
		y[i] = t0
		spl0 = t0

		t1 := (spl1-y[i+1])*c[i+1] + x[i+1]
		x[i+1] = spl1
		y[i+1] = t1
		spl1 = t1
	}

	if i < n {
		t0 := (spl0-y[i])*c[i] + x[i]
		x[i] = spl0
		y[i] = t0
		spl0 = t0
	}

	return spl0, spl1
}

func (b *branches) reset() {
	clear(b.x)
	clear(b.y)
}

// Upsampler doubles the sample rate: each input sample produces two output
// samples.
type Upsampler struct {
	b     branches
	delay float64
}

// NewUpsampler creates an interpolator from designed coefficients.
func NewUpsampler(coeffs []float64) (*Upsampler, error) {
	b, err := newBranches(coeffs)
	if err != nil {
		return nil, err
	}

	return &Upsampler{b: b, delay: GroupDelay(coeffs)}, nil
}

// ProcessSample returns the two high-rate samples produced by x.
func (u *Upsampler) ProcessSample(x float64) (out0, out1 float64) {
	return u.b.step(x, x)
}

// ProcessBlock interpolates src into dst, which must hold 2*len(src)
// samples. dst and src must not overlap.
func (u *Upsampler) ProcessBlock(dst, src []float64) {
	dst = dst[:2*len(src)]
	for i, x := range src {
		dst[2*i], dst[2*i+1] = u.b.step(x, x)
	}
}

// Reset clears the filter state.
func (u *Upsampler) Reset() { u.b.reset() }

// Latency returns the DC group delay in high-rate samples.
func (u *Upsampler) Latency() float64 { return u.delay }

// NumCoefficients reports the filter size.
func (u *Upsampler) NumCoefficients() int { return len(u.b.coeffs) }

// Downsampler halves the sample rate: each pair of input samples produces
// one output sample.
type Downsampler struct {
	b     branches
	delay float64
}

// NewDownsampler creates a decimator from designed coefficients.
func NewDownsampler(coeffs []float64) (*Downsampler, error) {
	b, err := newBranches(coeffs)
	if err != nil {
		return nil, err
	}

	return &Downsampler{b: b, delay: GroupDelay(coeffs) - 1}, nil
}

// ProcessSample consumes the high-rate pair (in0 earlier, in1 later) and
// returns one low-rate sample.
func (d *Downsampler) ProcessSample(in0, in1 float64) float64 {
	p0, p1 := d.b.step(in1, in0)
	return 0.5 * (p0 + p1)
}

// ProcessBlock decimates src into dst; len(src) must be 2*len(dst). Writing
// in place (dst aliasing the start of src) is allowed.
func (d *Downsampler) ProcessBlock(dst, src []float64) {
	src = src[:2*len(dst)]
	for i := range dst {
		p0, p1 := d.b.step(src[2*i+1], src[2*i])
		dst[i] = 0.5 * (p0 + p1)
	}
}

// Reset clears the filter state.
func (d *Downsampler) Reset() { d.b.reset() }

// Latency returns the DC group delay in high-rate samples, measured against
// the decimated output timeline.
func (d *Downsampler) Latency() float64 { return d.delay }

// NumCoefficients reports the filter size.
func (d *Downsampler) NumCoefficients() int { return len(d.b.coeffs) }
