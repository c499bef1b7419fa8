package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cwbudde/valvesat/host"
	"github.com/cwbudde/valvesat/internal/audio"
	"github.com/cwbudde/valvesat/internal/cli"
	"github.com/cwbudde/valvesat/internal/render"
	"github.com/cwbudde/valvesat/internal/ui"
)

type renderCmd struct {
	effectFlags `embed:""`

	Input      string `arg:"" type:"existingfile" help:"Input WAV file."`
	Output     string `arg:"" type:"path" help:"Output WAV file."`
	BitDepth   int    `name:"bit-depth" enum:"0,16,24,32" default:"0" help:"Output bit depth; 0 keeps the input depth."`
	BlockSize  int    `name:"block-size" default:"512" help:"Processing block size in frames."`
	Compensate bool   `default:"true" negatable:"" help:"Remove the processing latency from the output."`
}

func (c *renderCmd) Run(rc *runContext) error {
	clip, err := audio.ReadWAVFile(c.Input)
	if err != nil {
		return err
	}
	if !host.SupportsLayout(clip.NumChannels, clip.NumChannels) {
		return fmt.Errorf("%s: %d channels, only mono and stereo are supported", c.Input, clip.NumChannels)
	}

	ps, err := c.parameters()
	if err != nil {
		return err
	}

	p, err := newProcessor(ps, float64(clip.SampleRate), c.BlockSize, clip.NumChannels,
		host.WithLatencyListener(host.LatencyListenerFunc(func(n int) {
			rc.log.Debug("latency", "samples", n)
		})))
	if err != nil {
		return err
	}

	rc.log.Info("render",
		"input", c.Input, "output", c.Output,
		"rate", clip.SampleRate, "channels", clip.NumChannels, "frames", clip.Frames(),
		"state", ps.State())

	if rc.interactive {
		return c.runInteractive(rc, p, clip, ps)
	}
	return c.runPlain(rc, p, clip)
}

func (c *renderCmd) runPlain(rc *runContext, p *host.Processor, clip *audio.Clip) error {
	start := time.Now()
	lastPct := -1

	res, err := render.Render(rc.ctx, p, clip, render.Options{
		Compensate: c.Compensate,
		Progress: func(done, total int, _ float64) {
			if pct := 100 * done / total; pct/10 != lastPct/10 {
				lastPct = pct
				rc.log.Debug("progress", "percent", pct)
			}
		},
	})
	if err != nil {
		return err
	}

	if err := audio.WriteWAVFile(c.Output, res.Clip, c.BitDepth); err != nil {
		return err
	}

	cli.PrintKeyValue(rc.stdout, "output", c.Output)
	cli.PrintKeyValue(rc.stdout, "latency", fmt.Sprintf("%d samples (compensated: %t)", res.LatencyFrames, c.Compensate))
	cli.PrintKeyValue(rc.stdout, "peak", fmt.Sprintf("%.2f -> %.2f", res.PeakIn, res.PeakOut))
	cli.PrintKeyValue(rc.stdout, "loudness", fmt.Sprintf("%s -> %s", lufs(res.LoudnessIn), lufs(res.LoudnessOut)))
	cli.PrintKeyValue(rc.stdout, "clipped", fmt.Sprintf("%d samples", res.ClippedSamples))
	cli.PrintKeyValue(rc.stdout, "time", time.Since(start).Round(time.Millisecond).String())
	return nil
}

func (c *renderCmd) runInteractive(rc *runContext, p *host.Processor, clip *audio.Clip, ps *host.Parameters) error {
	ctx, cancel := context.WithCancel(rc.ctx)
	defer cancel()

	prog := tea.NewProgram(ui.NewRenderModel(), tea.WithContext(ctx))

	go func() {
		start := time.Now()
		prog.Send(ui.StartMsg{
			Input:  filepath.Base(c.Input),
			Output: filepath.Base(c.Output),
			Frames: clip.Frames(),
			Mode:   ps.SelectedMode().String(),
		})

		res, err := render.Render(ctx, p, clip, render.Options{
			Compensate: c.Compensate,
			Progress: func(done, total int, peak float64) {
				prog.Send(ui.ProgressMsg{Done: done, Total: total, Peak: peak})
			},
		})
		if err == nil {
			err = audio.WriteWAVFile(c.Output, res.Clip, c.BitDepth)
		}
		if err != nil {
			rc.log.Error("render failed", "err", err)
		} else {
			rc.log.Info("loudness", "in", res.LoudnessIn, "out", res.LoudnessOut)
		}
		prog.Send(ui.CompleteMsg{Elapsed: time.Since(start), Clipped: res.ClippedSamples, Err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if err := final.(ui.RenderModel).Err; err != nil {
		if ui.IsCancelled(err) {
			fmt.Fprintln(rc.stdout, "render cancelled, nothing written")
			return nil
		}
		return err
	}
	return nil
}

func lufs(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf LUFS"
	}
	return fmt.Sprintf("%.1f LUFS", v)
}
