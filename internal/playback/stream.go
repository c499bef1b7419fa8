// Package playback streams a clip through a host processor to the sound
// card.
package playback

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync/atomic"

	"github.com/cwbudde/valvesat/host"
	"github.com/cwbudde/valvesat/internal/audio"
)

const bytesPerSample = 4 // float32 little endian

// Stream is an io.Reader yielding processed float32 LE frames. It is read
// from the audio driver goroutine.
type Stream struct {
	proc *host.Processor
	clip *audio.Clip
	loop bool

	pos     int // next frame of clip
	scratch []float64
	frames  atomic.Int64
	err     atomic.Pointer[error]
}

// NewStream returns a stream over clip. With loop set it never ends.
func NewStream(proc *host.Processor, clip *audio.Clip, loop bool) (*Stream, error) {
	if clip.NumChannels != proc.Saturator().NumChannels() {
		return nil, errors.New("playback: clip and processor channel counts differ")
	}
	if clip.Frames() == 0 {
		return nil, errors.New("playback: empty clip")
	}
	return &Stream{proc: proc, clip: clip, loop: loop}, nil
}

// FramesPlayed returns the number of frames handed to the driver.
func (s *Stream) FramesPlayed() int64 { return s.frames.Load() }

// Err returns the first processing error, if any.
func (s *Stream) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	numCh := s.clip.NumChannels
	frameBytes := numCh * bytesPerSample
	want := len(p) / frameBytes
	if want == 0 {
		return 0, nil
	}

	if cap(s.scratch) < want*numCh {
		s.scratch = make([]float64, want*numCh)
	}

	total := s.clip.Frames()
	n := 0
	for n < want {
		if s.pos >= total {
			if !s.loop {
				break
			}
			s.pos = 0
		}
		chunk := min(want-n, total-s.pos)
		copy(s.scratch[n*numCh:], s.clip.Samples[s.pos*numCh:(s.pos+chunk)*numCh])
		s.pos += chunk
		n += chunk
	}
	if n == 0 {
		return 0, io.EOF
	}

	buf := s.scratch[:n*numCh]
	if err := s.proc.ProcessInterleaved(buf); err != nil {
		s.err.CompareAndSwap(nil, &err)
		return 0, err
	}

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(float32(v)))
	}
	s.frames.Add(int64(n))
	return n * frameBytes, nil
}
