// Package testutil holds signal generators and assertions shared by the
// package tests.
package testutil

import (
	"math"
	"math/rand"
)

// Sine returns n samples of amp·sin(2π·freq·t) starting at sample offset,
// so consecutive blocks of one tone can be generated independently.
func Sine(freq, sampleRate, amp float64, n, offset int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amp * math.Sin(step*float64(offset+i))
	}
	return out
}

// Noise returns n samples of uniform white noise in [-amp, amp] from a fixed
// seed.
func Noise(seed int64, amp float64, n int) []float64 {
	out := make([]float64, n)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amp
	}
	return out
}

// Impulse returns a unit impulse at pos.
func Impulse(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}
	return out
}
