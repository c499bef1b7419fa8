package testutil

import (
	"math"
	"testing"
)

func TestSine_Continuation(t *testing.T) {
	whole := Sine(997, 48000, 0.5, 256, 0)
	head := Sine(997, 48000, 0.5, 100, 0)
	tail := Sine(997, 48000, 0.5, 156, 100)

	RequireNearlyEqual(t, append(head, tail...), whole, 1e-12)

	if math.Abs(whole[0]) > 1e-15 {
		t.Fatalf("whole[0] = %v, want 0", whole[0])
	}
	RequireBounded(t, whole, 0.5)
}

func TestNoise_Reproducible(t *testing.T) {
	a := Noise(7, 0.25, 1000)
	b := Noise(7, 0.25, 1000)

	d, err := MaxAbsDiff(a, b)
	if err != nil || d != 0 {
		t.Fatalf("MaxAbsDiff = %v, %v; want 0, nil", d, err)
	}
	RequireBounded(t, a, 0.25)
}

func TestImpulse(t *testing.T) {
	tests := []struct {
		pos  int
		want float64
	}{
		{0, 1},
		{5, 1},
		{-1, 0},
		{10, 0},
	}

	for _, tt := range tests {
		imp := Impulse(10, tt.pos)
		var sum float64
		for _, v := range imp {
			sum += v
		}
		if sum != tt.want {
			t.Errorf("Impulse(10, %d) sums to %v, want %v", tt.pos, sum, tt.want)
		}
	}
}
