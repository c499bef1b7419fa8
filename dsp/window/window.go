// Package window generates the tapering windows used for spectral analysis
// of the saturator output.
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function. The zero value is Hann.
type Type int

const (
	TypeHann Type = iota
	TypeRectangular
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris
	TypeFlatTop
	TypeKaiser

	numTypes
)

// KaiserBeta is the shape used for TypeKaiser, roughly 90 dB of sidelobe
// rejection.
const KaiserBeta = 9.0

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name string
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// CoherentGain is the mean coefficient (DC gain / N).
	CoherentGain float64
	// MainLobeBins is the distance from the peak to the first null, in bins.
	// The THD analyser sums this many bins either side of each peak.
	MainLobeBins int
}

type kind struct {
	Metadata
	// cos holds generalized cosine terms, w(x) = sum cos[k]·cos(2πkx).
	// Kaiser has none and is evaluated separately.
	cos []float64
}

var kinds = [numTypes]kind{
	TypeHann:           {Metadata{"hann", 1.5, 0.5, 2}, []float64{0.5, -0.5}},
	TypeRectangular:    {Metadata{"rectangular", 1, 1, 1}, []float64{1}},
	TypeHamming:        {Metadata{"hamming", 1.3628, 0.54, 2}, []float64{0.54, -0.46}},
	TypeBlackman:       {Metadata{"blackman", 1.7268, 0.42, 3}, []float64{0.42, -0.5, 0.08}},
	TypeBlackmanHarris: {Metadata{"blackman-harris", 2.0044, 0.35875, 4}, []float64{0.35875, -0.48829, 0.14128, -0.01168}},
	TypeFlatTop:        {Metadata{"flattop", 3.7702, 0.21557895, 5}, []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}},
	TypeKaiser:         {Metadata{"kaiser", 1.758, 0.4115, 3}, nil},
}

// Valid reports whether t is a known window type.
func (t Type) Valid() bool { return t >= 0 && t < numTypes }

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("window(%d)", int(t))
	}
	return kinds[t].Name
}

// ParseType accepts the names printed by String, ignoring case and
// surrounding space.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t := range numTypes {
		if kinds[t].Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("window: unknown type %q", s)
}

// Info returns the metadata of t, or the zero value for unknown types.
func Info(t Type) Metadata {
	if !t.Valid() {
		return Metadata{}
	}
	return kinds[t].Metadata
}

// Generate returns the symmetric window of the given length. Unknown types
// yield a rectangular window.
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = at(t, 0)
		return out
	}

	last := float64(length - 1)
	for i := range out {
		out[i] = at(t, float64(i)/last)
	}
	return out
}

// Apply multiplies buf in place by the window of matching length.
func Apply(t Type, buf []float64) {
	if len(buf) > 0 {
		vecmath.MulBlockInPlace(buf, Generate(t, len(buf)))
	}
}

// at evaluates the window at x in [0, 1].
func at(t Type, x float64) float64 {
	switch {
	case t == TypeKaiser:
		r := 2*x - 1
		return besselI0(KaiserBeta*math.Sqrt(max(0, 1-r*r))) / besselI0(KaiserBeta)
	case !t.Valid():
		return 1
	}

	var w float64
	for k, c := range kinds[t].cos {
		w += c * math.Cos(2*math.Pi*float64(k)*x)
	}
	return w
}

// besselI0 is the polynomial approximation of I0 from Abramowitz and Stegun
// 9.8.1 and 9.8.2.
func besselI0(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := x / 3.75
		y *= y
		return 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+y*(0.2659732+y*(0.0360768+y*0.0045813)))))
	}

	y := 3.75 / ax
	return (math.Exp(ax) / math.Sqrt(ax)) *
		(0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+y*0.00392377))))))))
}
