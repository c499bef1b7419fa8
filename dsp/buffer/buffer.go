package buffer

import "github.com/cwbudde/algo-vecmath"

// Buffer is a planar block of numChannels channels, each with a fixed
// capacity. All channel views share one backing array.
type Buffer struct {
	data     []float64
	channels [][]float64
	capacity int
	length   int
}

// New returns a zero-filled Buffer with the given channel count and
// per-channel capacity. The active length starts at capacity.
func New(numChannels, capacity int) *Buffer {
	if numChannels < 0 {
		numChannels = 0
	}
	if capacity < 0 {
		capacity = 0
	}

	b := &Buffer{
		data:     make([]float64, numChannels*capacity),
		channels: make([][]float64, numChannels),
		capacity: capacity,
	}
	b.SetLen(capacity)
	return b
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Cap returns the per-channel capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Len returns the active per-channel length.
func (b *Buffer) Len() int { return b.length }

// SetLen sets the active per-channel length, clamped to [0, Cap()], and
// returns the channel views. It never allocates.
func (b *Buffer) SetLen(n int) [][]float64 {
	if n < 0 {
		n = 0
	}
	if n > b.capacity {
		n = b.capacity
	}

	for ch := range b.channels {
		start := ch * b.capacity
		b.channels[ch] = b.data[start : start+n : start+b.capacity]
	}
	b.length = n
	return b.channels
}

// Channels returns the channel views at the active length.
func (b *Buffer) Channels() [][]float64 { return b.channels }

// Channel returns the view of channel i at the active length.
func (b *Buffer) Channel(i int) []float64 { return b.channels[i] }

// Zero clears the full capacity of every channel.
func (b *Buffer) Zero() {
	clear(b.data)
}

// CopyFrom sets the active length to the length of src's first channel
// (clamped to capacity) and copies as many channels as both sides have.
// It returns the number of samples copied per channel.
func (b *Buffer) CopyFrom(src [][]float64) int {
	n := 0
	if len(src) > 0 {
		n = len(src[0])
	}
	b.SetLen(n)

	for ch := range b.channels {
		if ch >= len(src) {
			clear(b.channels[ch])
			continue
		}
		copy(b.channels[ch], src[ch])
	}
	return b.length
}

// ApplyGain scales every channel in place. Unity gain is a no-op.
func ApplyGain(channels [][]float64, gain float64) {
	if gain == 1 {
		return
	}
	for _, ch := range channels {
		vecmath.ScaleBlockInPlace(ch, gain)
	}
}

// Crossfade blends dry into wet in place: wet = dry*(1-mix) + wet*mix.
// dry is used as scratch and holds dry*(1-mix) on return. Channels beyond
// the shorter of the two sets are left untouched.
func Crossfade(wet, dry [][]float64, mix float64) {
	n := min(len(wet), len(dry))
	for ch := 0; ch < n; ch++ {
		w := wet[ch]
		d := dry[ch][:len(w)]
		vecmath.ScaleBlockInPlace(w, mix)
		vecmath.ScaleBlockInPlace(d, 1-mix)
		vecmath.AddBlockInPlace(w, d)
	}
}

// Interleave writes planar channels into dst frame by frame
// (dst[i*numChannels+ch]). It returns the number of frames written.
func Interleave(dst []float64, channels [][]float64) int {
	numCh := len(channels)
	if numCh == 0 {
		return 0
	}
	frames := min(len(channels[0]), len(dst)/numCh)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			dst[i*numCh+ch] = channels[ch][i]
		}
	}
	return frames
}

// Deinterleave splits frame-interleaved src into planar channels. It returns
// the number of frames written.
func Deinterleave(channels [][]float64, src []float64) int {
	numCh := len(channels)
	if numCh == 0 {
		return 0
	}
	frames := min(len(channels[0]), len(src)/numCh)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			channels[ch][i] = src[i*numCh+ch]
		}
	}
	return frames
}
