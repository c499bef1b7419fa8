package valve

import (
	"math"
	"testing"
)

func TestShape_Bounded(t *testing.T) {
	for _, m := range Modes {
		c := CurveFor(m)
		for _, x := range []float64{-1e9, -1e3, -10, -1, -0.1, 0, 0.1, 1, 10, 1e3, 1e9} {
			y := c.Shape(x)
			if math.Abs(y) > 1 {
				t.Fatalf("%v: |Shape(%v)| = %v exceeds 1", m, x, math.Abs(y))
			}
		}
	}
}

func TestShape_Values(t *testing.T) {
	tests := []struct {
		x, a, b, want float64
	}{
		{x: 0, a: 2.5, b: 0.5, want: 0},
		{x: 0.2, a: 2.5, b: 0.5, want: math.Tanh(2.5 * 0.3)},
		{x: -0.2, a: 2.5, b: 0.5, want: math.Tanh(2.5 * -0.1)},
		{x: 0.1, a: 8, b: 0.7, want: math.Tanh(8 * 0.17)},
		{x: -0.1, a: 8, b: 0.7, want: math.Tanh(8 * -0.03)},
	}

	for _, tt := range tests {
		if got := Shape(tt.x, tt.a, tt.b); math.Abs(got-tt.want) > 1e-15 {
			t.Errorf("Shape(%v, %v, %v) = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestShape_AsymmetricAndMonotonic(t *testing.T) {
	for _, m := range Modes {
		c := CurveFor(m)

		if p, n := c.Shape(0.3), -c.Shape(-0.3); p <= n {
			t.Fatalf("%v: positive swing %v not above negative swing %v", m, p, n)
		}

		prev := c.Shape(-2)
		for x := -2.0; x <= 2; x += 0.01 {
			y := c.Shape(x)
			if y < prev {
				t.Fatalf("%v: not monotonic at %v", m, x)
			}
			prev = y
		}
	}
}
