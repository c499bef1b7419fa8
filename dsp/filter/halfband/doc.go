// Package halfband provides polyphase half-band IIR filters for 2x sample
// rate conversion.
//
// A half-band filter is split into two branches of cascaded first-order
// allpass sections in z^-2, H(z) = (A0(z^2) + z^-1*A1(z^2)) / 2. Coefficients
// alternate between the branches: even indices feed branch 0, odd indices
// branch 1. Running the branches at the low rate gives the classic
// polyphase interpolator ([Upsampler]) and decimator ([Downsampler]).
//
// [Design] derives the minimal coefficient set for a normalized transition
// bandwidth and a stopband attenuation, using the elliptic design of the
// HIIR library.
package halfband
