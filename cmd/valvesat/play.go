package main

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/valvesat/host"
	"github.com/cwbudde/valvesat/internal/audio"
	"github.com/cwbudde/valvesat/internal/cli"
	"github.com/cwbudde/valvesat/internal/playback"
	"github.com/cwbudde/valvesat/internal/ui"
)

type playCmd struct {
	effectFlags `embed:""`

	Input      string        `arg:"" optional:"" type:"existingfile" help:"WAV file to play. Plays a test tone when omitted."`
	Tone       float64       `default:"110" help:"Test tone frequency in Hz."`
	SampleRate int           `name:"sample-rate" default:"48000" help:"Test tone sample rate in Hz."`
	Loop       bool          `default:"true" negatable:"" help:"Loop the input."`
	Duration   time.Duration `help:"Stop after this long (0 plays until the input ends or q is pressed)."`
	BlockSize  int           `name:"block-size" default:"256" help:"Processing block size in frames."`
	SaveState  string        `name:"save-state" type:"path" help:"Write the final parameter state to this file."`
}

func (c *playCmd) source() (*audio.Clip, string, error) {
	if c.Input == "" {
		return audio.Sine(c.SampleRate, 2, c.Tone, 0.5, 2*time.Second), fmt.Sprintf("%.0f Hz tone", c.Tone), nil
	}

	clip, err := audio.ReadWAVFile(c.Input)
	if err != nil {
		return nil, "", err
	}
	if !host.SupportsLayout(clip.NumChannels, clip.NumChannels) {
		return nil, "", fmt.Errorf("%s: %d channels, only mono and stereo are supported", c.Input, clip.NumChannels)
	}
	return clip, filepath.Base(c.Input), nil
}

func (c *playCmd) Run(rc *runContext) error {
	clip, name, err := c.source()
	if err != nil {
		return err
	}

	ps, err := c.parameters()
	if err != nil {
		return err
	}

	latency := make(chan int, 8)
	p, err := newProcessor(ps, float64(clip.SampleRate), c.BlockSize, clip.NumChannels,
		host.WithLatencyListener(host.LatencyListenerFunc(func(n int) {
			// Called on the audio goroutine; drop updates rather than block.
			select {
			case latency <- n:
			default:
			}
		})))
	if err != nil {
		return err
	}

	stream, err := playback.NewStream(p, clip, c.Loop)
	if err != nil {
		return err
	}

	player, err := playback.NewPlayer(clip.SampleRate, clip.NumChannels, stream)
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	defer player.Close()

	rc.log.Info("play", "source", name, "rate", clip.SampleRate, "channels", clip.NumChannels, "loop", c.Loop)
	player.Play()

	if rc.interactive {
		err = c.runInteractive(rc, ps, name, player, latency)
	} else {
		err = c.runPlain(rc, player)
	}
	if err != nil {
		return err
	}
	if err := stream.Err(); err != nil {
		return err
	}

	rc.log.Info("stopped", "frames", stream.FramesPlayed())
	if c.SaveState != "" {
		if err := saveState(c.SaveState, ps); err != nil {
			return err
		}
		cli.PrintKeyValue(rc.stdout, "state", c.SaveState)
	}
	return nil
}

// waitDone closes done when playback ends, the duration elapses or stop is
// closed.
func (c *playCmd) waitDone(player *playback.Player, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var deadline <-chan time.Time
		if c.Duration > 0 {
			deadline = time.After(c.Duration)
		}
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()

		for {
			select {
			case <-stop:
				return
			case <-deadline:
				return
			case <-tick.C:
				if !player.IsPlaying() {
					return
				}
			}
		}
	}()
	return done
}

func (c *playCmd) runPlain(rc *runContext, player *playback.Player) error {
	if c.Loop && c.Duration <= 0 {
		fmt.Fprintln(rc.stdout, "playing, press ctrl+c to stop")
	}

	select {
	case <-c.waitDone(player, rc.ctx.Done()):
	case <-rc.ctx.Done():
	}
	return nil
}

func (c *playCmd) runInteractive(rc *runContext, ps *host.Parameters, name string, player *playback.Player, latency <-chan int) error {
	prog := tea.NewProgram(ui.NewLiveModel(ps, name), tea.WithContext(rc.ctx))

	stop := make(chan struct{})
	defer close(stop)

	go func() {
		done := c.waitDone(player, stop)
		for {
			select {
			case n := <-latency:
				prog.Send(ui.LatencyMsg(n))
			case <-done:
				prog.Send(ui.StoppedMsg{})
				return
			}
		}
	}()

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return final.(ui.LiveModel).Err
}
