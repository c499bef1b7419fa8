// Package valve implements a vacuum-tube style saturator.
//
// The signal path of [Saturator] per block is
//
//	input trim -> DC block -> pre-emphasis -> oversample up
//	  -> per sample: envelope, sag-modulated drive, bias, valve shaper
//	  -> oversample down -> post-emphasis -> DC block -> output trim
//	  -> dry/wet blend
//
// Three voicings ([ModeTriode], [ModePentode], [ModeTorture]) select the
// shaper curve, the emphasis filters and the oversampling factor. Torture
// runs at 8x, the others at 4x; [Saturator.LatencyInSamples] reports the
// resulting delay so hosts can compensate.
//
// The saturator is single-threaded: Process and Reset never allocate, lock
// or log. Parameter smoothing is the caller's job; see [ControlSource].
package valve
