// Package audio reads and writes PCM WAV files as interleaved float64
// samples in [-1, 1].
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("audio: not a valid PCM WAV file")

// Clip is an in-memory interleaved audio clip.
type Clip struct {
	SampleRate  int
	NumChannels int
	BitDepth    int
	Samples     []float64
}

// Frames returns the number of sample frames.
func (c *Clip) Frames() int {
	if c.NumChannels <= 0 {
		return 0
	}
	return len(c.Samples) / c.NumChannels
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.Frames()) / float64(c.SampleRate) * float64(time.Second))
}

// Peak returns the largest absolute sample value.
func (c *Clip) Peak() float64 {
	peak := 0.0
	for _, v := range c.Samples {
		peak = max(peak, math.Abs(v))
	}
	return peak
}

// Sine returns a sine clip at the same level on every channel.
func Sine(sampleRate, numChannels int, freq, amplitude float64, d time.Duration) *Clip {
	frames := int(d.Seconds() * float64(sampleRate))
	c := &Clip{
		SampleRate:  sampleRate,
		NumChannels: numChannels,
		BitDepth:    24,
		Samples:     make([]float64, frames*numChannels),
	}

	step := 2 * math.Pi * freq / float64(sampleRate)
	for i := range frames {
		v := amplitude * math.Sin(step*float64(i))
		for ch := range numChannels {
			c.Samples[i*numChannels+ch] = v
		}
	}
	return c
}

func supportedDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

// ReadWAV decodes a 16, 24 or 32 bit PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode: %w", err)
	}

	bits := int(dec.BitDepth)
	if !supportedDepth(bits) {
		return nil, fmt.Errorf("audio: unsupported bit depth %d", bits)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, ErrInvalidWAV
	}

	scale := 1 / float64(int64(1)<<(bits-1))
	c := &Clip{
		SampleRate:  buf.Format.SampleRate,
		NumChannels: buf.Format.NumChannels,
		BitDepth:    bits,
		Samples:     make([]float64, len(buf.Data)),
	}
	for i, v := range buf.Data {
		c.Samples[i] = float64(v) * scale
	}
	return c, nil
}

// ReadWAVFile opens and decodes path.
func ReadWAVFile(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := ReadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// WriteWAV encodes c as PCM at bitDepth (0 keeps c.BitDepth). Samples are
// clipped to full scale.
func WriteWAV(w io.WriteSeeker, c *Clip, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = c.BitDepth
	}
	if !supportedDepth(bitDepth) {
		return fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}
	if c.NumChannels < 1 || c.SampleRate <= 0 {
		return fmt.Errorf("audio: invalid format %d Hz, %d channels", c.SampleRate, c.NumChannels)
	}

	full := float64(int64(1) << (bitDepth - 1))
	data := make([]int, len(c.Samples))
	for i, v := range c.Samples {
		data[i] = int(min(max(math.Round(v*full), -full), full-1))
	}

	enc := wav.NewEncoder(w, c.SampleRate, bitDepth, c.NumChannels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: c.NumChannels, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: encode: %w", err)
	}
	return enc.Close()
}

// WriteWAVFile creates path and writes c to it.
func WriteWAVFile(path string, c *Clip, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteWAV(f, c, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
