package valve

import (
	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/filter/biquad"
	"github.com/cwbudde/valvesat/dsp/filter/design"
)

const (
	preHighpassHz = 60.0
	preHighpassQ  = 0.5
	preMidHz      = 1000.0
	preMidQ       = 0.6
	preShelfHz    = 6000.0
	preShelfQ     = 0.7

	postLowpassQ = 0.7
	postShelfHz  = 120.0
	postShelfQ   = 0.7
	postDipHz    = 3000.0
	postDipQ     = 1.0
)

// emphasis holds the per-channel pre and post EQ cascades. Coefficients are
// re-derived each block into the fixed arrays and pushed into the chains
// without touching their delay state.
type emphasis struct {
	pre  [core.MaxChannels]*biquad.Chain
	post [core.MaxChannels]*biquad.Chain

	preCoeffs  [3]biquad.Coefficients
	postCoeffs [3]biquad.Coefficients
}

func newEmphasis() *emphasis {
	e := &emphasis{}
	identity := []biquad.Coefficients{biquad.Identity(), biquad.Identity(), biquad.Identity()}
	for ch := range e.pre {
		e.pre[ch] = biquad.NewChain(identity)
		e.post[ch] = biquad.NewChain(identity)
	}
	return e
}

func designPre(dst *[3]biquad.Coefficients, sampleRate float64, v *voicing) {
	dst[0] = design.Highpass(preHighpassHz, preHighpassQ, sampleRate)
	dst[1] = design.Peak(design.ClampFrequency(preMidHz, sampleRate), v.preMidGainDB, preMidQ, sampleRate)
	dst[2] = design.HighShelf(design.ClampFrequency(preShelfHz, sampleRate), v.preShelfGainDB, preShelfQ, sampleRate)
}

func designPost(dst *[3]biquad.Coefficients, sampleRate float64, v *voicing) {
	dst[0] = design.Lowpass(design.ClampFrequency(v.postLowpassHz, sampleRate), postLowpassQ, sampleRate)
	dst[1] = design.LowShelf(postShelfHz, v.postShelfGainDB, postShelfQ, sampleRate)
	dst[2] = design.Peak(design.ClampFrequency(postDipHz, sampleRate), v.postDipGainDB, postDipQ, sampleRate)
}

func (e *emphasis) processPre(buf [][]float64, sampleRate float64, v *voicing) {
	designPre(&e.preCoeffs, sampleRate, v)
	for ch, data := range buf {
		e.pre[ch].SetCoefficients(e.preCoeffs[:])
		e.pre[ch].ProcessBlock(data)
	}
}

func (e *emphasis) processPost(buf [][]float64, sampleRate float64, v *voicing) {
	designPost(&e.postCoeffs, sampleRate, v)
	for ch, data := range buf {
		e.post[ch].SetCoefficients(e.postCoeffs[:])
		e.post[ch].ProcessBlock(data)
	}
}

func (e *emphasis) reset() {
	for ch := range e.pre {
		e.pre[ch].Reset()
		e.post[ch].Reset()
	}
}

// PreEmphasis returns the three pre-shaper EQ sections of mode m at
// sampleRate: highpass, mid peak, high shelf.
func PreEmphasis(m Mode, sampleRate float64) []biquad.Coefficients {
	var c [3]biquad.Coefficients
	designPre(&c, sampleRate, voicingFor(m))
	return c[:]
}

// PostEmphasis returns the three post-shaper EQ sections of mode m at
// sampleRate: lowpass, low shelf, presence dip.
func PostEmphasis(m Mode, sampleRate float64) []biquad.Coefficients {
	var c [3]biquad.Coefficients
	designPost(&c, sampleRate, voicingFor(m))
	return c[:]
}
