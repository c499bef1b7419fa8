package design

import (
	"math"

	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/filter/biquad"
)

// ButterworthQ is used whenever a non-positive or non-finite Q is passed.
const ButterworthQ = 1 / math.Sqrt2

// ClampFrequency caps freq at 0.45·sampleRate so corner frequencies chosen
// for 44.1 kHz and up stay below Nyquist at low sample rates.
func ClampFrequency(freq, sampleRate float64) float64 {
	return min(freq, 0.45*sampleRate)
}

// cookbook holds the intermediate terms shared by the RBJ formulas.
type cookbook struct {
	cos, alpha float64
}

// prepare returns false when freq is not strictly inside (0, Nyquist).
func prepare(freq, q, sampleRate float64) (cookbook, bool) {
	if !core.IsFinite(sampleRate) || !core.IsFinite(freq) || sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return cookbook{}, false
	}
	if !core.IsFinite(q) || q <= 0 {
		q = ButterworthQ
	}

	w := 2 * math.Pi * freq / sampleRate
	return cookbook{cos: math.Cos(w), alpha: math.Sin(w) / (2 * q)}, true
}

// shelfAmp is the RBJ "A": the square root of the linear gain.
func shelfAmp(gainDB float64) float64 { return math.Pow(10, gainDB/40) }

// Lowpass is a second-order lowpass at freq with quality q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	k, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	b := (1 - k.cos) / 2
	return scaled([3]float64{b, 2 * b, b}, [3]float64{1 + k.alpha, -2 * k.cos, 1 - k.alpha})
}

// Highpass is a second-order highpass at freq with quality q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	k, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	b := (1 + k.cos) / 2
	return scaled([3]float64{b, -2 * b, b}, [3]float64{1 + k.alpha, -2 * k.cos, 1 - k.alpha})
}

// Peak is a peaking equaliser with gainDB at freq.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	k, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := shelfAmp(gainDB)
	return scaled(
		[3]float64{1 + k.alpha*a, -2 * k.cos, 1 - k.alpha*a},
		[3]float64{1 + k.alpha/a, -2 * k.cos, 1 - k.alpha/a},
	)
}

// LowShelf applies gainDB below freq.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, 1)
}

// HighShelf applies gainDB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return shelf(freq, gainDB, q, sampleRate, -1)
}

// shelf implements both RBJ shelves; the high shelf is the low shelf with
// the sign of every cos term flipped (s = -1).
func shelf(freq, gainDB, q, sampleRate, s float64) biquad.Coefficients {
	k, ok := prepare(freq, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a := shelfAmp(gainDB)
	c := s * k.cos
	beta := 2 * math.Sqrt(a) * k.alpha
	return scaled(
		[3]float64{
			a * ((a + 1) - (a-1)*c + beta),
			2 * s * a * ((a - 1) - (a+1)*c),
			a * ((a + 1) - (a-1)*c - beta),
		},
		[3]float64{
			(a + 1) + (a-1)*c + beta,
			-2 * s * ((a - 1) + (a+1)*c),
			(a + 1) + (a-1)*c - beta,
		},
	)
}

// scaled divides numerator b and denominator a by a[0].
func scaled(b, a [3]float64) biquad.Coefficients {
	if a[0] == 0 || !core.IsFinite(a[0]) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b[0] / a[0], B1: b[1] / a[0], B2: b[2] / a[0],
		A1: a[1] / a[0], A2: a[2] / a[0],
	}
}
