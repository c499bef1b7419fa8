package valve

import "math"

// Shape is the asymmetric valve transfer function. Positive half-waves are
// scaled by (1+asymmetry), negative ones by (1-asymmetry), before a tanh of
// slope curvature. The asymmetry generates even harmonics; the output
// magnitude never exceeds 1.
func Shape(x, curvature, asymmetry float64) float64 {
	if x >= 0 {
		return math.Tanh(curvature * (x * (1 + asymmetry)))
	}
	return math.Tanh(curvature * (x * (1 - asymmetry)))
}

// Shape applies the curve to x.
func (c Curve) Shape(x float64) float64 {
	return Shape(x, c.Curvature, c.Asymmetry)
}
