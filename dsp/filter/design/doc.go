// Package design provides RBJ audio-EQ-cookbook biquad designers.
//
// The functions in this package produce coefficients consumable by
// dsp/filter/biquad. Invalid frequencies (non-positive, at or above Nyquist,
// non-finite) yield zero coefficients; callers that derive frequencies from a
// fixed table use [ClampFrequency] first so low sample rates stay usable.
package design
