// Package oversample provides multi-stage 2^N oversampling built from
// polyphase half-band IIR stages.
//
// An [Oversampler] owns one interpolator and one decimator per stage and
// channel plus the high-rate working buffers, all allocated by [New]. A block
// is processed as
//
//	hi, _ := os.ProcessUp(in)   // len(hi[ch]) == len(in[ch]) * os.Factor()
//	... nonlinear processing on hi ...
//	_ = os.ProcessDown(out)     // back to len(in[ch]) samples
//
// Stage k (k = 0 at the base rate) uses transition 0.10 (halved for k = 0)
// and 75+10k dB attenuation on the way up, 0.12 (halved for k = 0) and
// 70+10k dB on the way down. [Oversampler.Latency] reports the combined DC
// group delay in base-rate samples, derived from the designed coefficients.
package oversample
