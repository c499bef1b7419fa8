package halfband

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/dsp/core"
)

// elliptic is the prototype for one transition width: the modulus k and the
// nome q of the elliptic function whose zeros place the allpass poles.
type elliptic struct {
	k, q float64
}

func newElliptic(transition float64) (elliptic, error) {
	if !core.IsFinite(transition) || transition <= 0 || transition >= 0.5 {
		return elliptic{}, fmt.Errorf("halfband: transition must be finite and in (0, 0.5): %g", transition)
	}

	k := math.Pow(math.Tan((1-2*transition)*math.Pi/4), 2)
	kp := math.Pow(1-k*k, 0.25)
	e := 0.5 * (1 - kp) / (1 + kp)
	e4 := e * e * e * e

	return elliptic{k: k, q: e * (1 + e4*(2+e4*(15+150*e4)))}, nil
}

// order is the smallest odd filter order (at least 3) that reaches
// attenuationDB.
func (e elliptic) order(attenuationDB float64) int {
	p := math.Pow(10, -attenuationDB/10)
	a := p / (1 - p)
	n := int(math.Ceil(math.Log(a*a/16) / math.Log(e.q)))

	return max(n|1, 3)
}

func (e elliptic) attenuation(order int) float64 {
	v := 4 * math.Pow(e.q, float64(order)/2)
	return -10 * math.Log10(v/(1+v))
}

// coefficient returns allpass coefficient c (1-based) of a filter of the
// given order. The theta-function series are summed until both terms drop
// below 1e-100.
func (e elliptic) coefficient(c, order int) float64 {
	phi := math.Pi * float64(c) / float64(order)

	num, den := 0.0, 0.5
	sign := 1.0
	for i := 0; ; i++ {
		ns := sign * math.Pow(e.q, float64(i*(i+1))) * math.Sin(float64(2*i+1)*phi)
		num += ns

		var ds float64
		if i > 0 {
			ds = sign * math.Pow(e.q, float64(i*i)) * math.Cos(float64(2*i)*phi)
			den += ds
		}

		if i > 0 && math.Abs(ns) <= 1e-100 && math.Abs(ds) <= 1e-100 {
			break
		}
		sign = -sign
	}

	num *= math.Pow(e.q, 0.25)
	w := num * num / (den * den)
	r := math.Sqrt((1-w*e.k)*(1-w/e.k)) / (1 + w)

	return (1 - r) / (1 + r)
}

// Design computes allpass coefficients for a half-band lowpass with the given
// normalized transition bandwidth (relative to the high sample rate, in
// (0, 0.5)) and minimum stopband attenuation in dB.
func Design(transition, attenuationDB float64) ([]float64, error) {
	n, err := CoefficientCount(transition, attenuationDB)
	if err != nil {
		return nil, err
	}

	e, _ := newElliptic(transition)
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = e.coefficient(i+1, 2*n+1)
	}

	return coeffs, nil
}

// CoefficientCount returns how many allpass coefficients Design produces.
func CoefficientCount(transition, attenuationDB float64) (int, error) {
	e, err := newElliptic(transition)
	if err != nil {
		return 0, err
	}
	if !core.IsFinite(attenuationDB) || attenuationDB <= 0 {
		return 0, fmt.Errorf("halfband: attenuation must be finite and > 0: %g", attenuationDB)
	}

	return (e.order(attenuationDB) - 1) / 2, nil
}

// Attenuation is the stopband attenuation in dB that n coefficients reach
// at the given transition bandwidth.
func Attenuation(n int, transition float64) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("halfband: need at least one coefficient, got %d", n)
	}

	e, err := newElliptic(transition)
	if err != nil {
		return 0, err
	}

	return e.attenuation(2*n + 1), nil
}

// GroupDelay returns the DC group delay of the half-band filter H(z) in
// samples at the high rate. Each section (a + z^-2)/(1 + a*z^-2) contributes
// 2(1-a)/(1+a); the odd branch adds one sample and the output is the mean of
// both branches.
func GroupDelay(coeffs []float64) float64 {
	var branch [2]float64
	for i, a := range coeffs {
		branch[i&1] += 2 * (1 - a) / (1 + a)
	}

	return (branch[0] + branch[1] + 1) / 2
}

// Response evaluates H(e^jw) at the normalized frequency f (cycles per
// high-rate sample).
func Response(coeffs []float64, f float64) complex128 {
	zinv := complex(math.Cos(2*math.Pi*f), -math.Sin(2*math.Pi*f))
	zinv2 := zinv * zinv

	branch := [2]complex128{1, 1}
	for i, a := range coeffs {
		ca := complex(a, 0)
		branch[i&1] *= (ca + zinv2) / (1 + ca*zinv2)
	}

	return (branch[0] + zinv*branch[1]) / 2
}

var errNoCoefficients = errors.New("halfband: no coefficients")

// validateCoefficients requires a non-empty set of finite coefficients with
// magnitude below one.
func validateCoefficients(coeffs []float64) error {
	if len(coeffs) == 0 {
		return errNoCoefficients
	}

	for i, c := range coeffs {
		if !core.IsFinite(c) || math.Abs(c) >= 1 {
			return fmt.Errorf("halfband: coefficient %d = %g makes the allpass unstable", i, c)
		}
	}

	return nil
}
