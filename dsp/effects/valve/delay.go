package valve

import "math"

// fractionalDelay delays a signal by a non-integer number of samples: an
// integer ring-buffer tap followed by a first-order Thiran allpass carrying
// the remaining 1 to 2 samples.
type fractionalDelay struct {
	ring []float64
	mask int
	pos  int

	taps int
	a    float64

	x1, y1 float64
}

func newFractionalDelay(maxDelay float64) *fractionalDelay {
	size := 1
	for size < int(math.Ceil(maxDelay))+1 {
		size <<= 1
	}

	return &fractionalDelay{ring: make([]float64, size), mask: size - 1}
}

// setDelay selects the delay in samples; values below one sample are raised
// to one and values beyond the ring are clamped.
func (d *fractionalDelay) setDelay(samples float64) {
	samples = max(samples, 1)
	samples = min(samples, float64(len(d.ring)))

	taps := int(math.Floor(samples)) - 1
	frac := samples - float64(taps) // in [1, 2)

	d.taps = taps
	d.a = (1 - frac) / (1 + frac)
}

func (d *fractionalDelay) processBlock(buf []float64) {
	ring, mask, pos := d.ring, d.mask, d.pos
	a, x1, y1 := d.a, d.x1, d.y1

	for i, x := range buf {
		ring[pos] = x
		v := ring[(pos-d.taps)&mask]
		pos = (pos + 1) & mask

		y := a*v + x1 - a*y1
		x1 = v
		y1 = y
		buf[i] = y
	}

	d.pos, d.x1, d.y1 = pos, x1, y1
}

func (d *fractionalDelay) reset() {
	clear(d.ring)
	d.pos = 0
	d.x1 = 0
	d.y1 = 0
}
