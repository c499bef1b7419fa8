//go:build headless

package playback

import (
	"io"
	"sync"
	"time"
)

// Player drains the reader in real time without a sound device.
type Player struct {
	r          io.Reader
	sampleRate int
	frameBytes int

	mu      sync.Mutex
	playing bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPlayer returns a device-less player.
func NewPlayer(sampleRate, numChannels int, r io.Reader) (*Player, error) {
	return &Player{r: r, sampleRate: sampleRate, frameBytes: 4 * numChannels}, nil
}

// Play starts draining.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return
	}
	p.playing = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
}

func (p *Player) run(stop, done chan struct{}) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	const period = 20 * time.Millisecond
	buf := make([]byte, p.frameBytes*p.sampleRate*int(period/time.Millisecond)/1000)
	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			if _, err := p.r.Read(buf); err != nil {
				return
			}
		}
	}
}

// IsPlaying reports whether the reader is still being drained.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// Close stops draining.
func (p *Player) Close() error {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop = nil
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}
