// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded via
// [Chain]; the valve saturator runs its pre- and post-emphasis equalisers as
// three-section chains whose coefficients are replaced every block while the
// delay state carries over.
//
// Block processing dispatches to an unrolled kernel chosen once from the CPU
// features reported by algo-vecmath/cpu. All kernels evaluate the same
// per-sample expressions, so the choice affects speed only.
//
// Coefficient design lives in dsp/filter/design.
package biquad
