// Package render runs an audio clip through a host processor offline.
package render

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/host"
	"github.com/cwbudde/valvesat/internal/audio"
	"github.com/cwbudde/valvesat/measure/loudness"
)

// DefaultChunkFrames is the number of frames processed between progress
// reports.
const DefaultChunkFrames = 8192

// Progress is called after each chunk with the frames done so far, the
// total and the output peak of the chunk.
type Progress func(done, total int, peak float64)

// Options configures Render.
type Options struct {
	// Compensate drops the processing latency from the start of the output
	// and renders the same number of extra frames at the end, so output
	// lines up with input.
	Compensate  bool
	ChunkFrames int
	Progress    Progress
}

// Result describes a finished render.
type Result struct {
	Clip           *audio.Clip
	LatencyFrames  int
	PeakIn         float64
	PeakOut        float64
	ClippedSamples int

	// Integrated loudness in LUFS; -Inf when the clip is too short or
	// quiet to gate, or its rate is too low to meter.
	LoudnessIn  float64
	LoudnessOut float64
}

// Render processes clip through p, which must already be prepared for the
// clip's sample rate and channel count.
func Render(ctx context.Context, p *host.Processor, clip *audio.Clip, opts Options) (Result, error) {
	if clip.NumChannels != p.Saturator().NumChannels() {
		return Result{}, fmt.Errorf("render: clip has %d channels, processor %d", clip.NumChannels, p.Saturator().NumChannels())
	}
	if float64(clip.SampleRate) != p.Saturator().SampleRate() {
		return Result{}, fmt.Errorf("render: clip rate %d Hz, processor %.0f Hz", clip.SampleRate, p.Saturator().SampleRate())
	}

	chunk := opts.ChunkFrames
	if chunk <= 0 {
		chunk = DefaultChunkFrames
	}

	numCh := clip.NumChannels
	latency := 0
	if opts.Compensate {
		latency = int(math.Ceil(p.Saturator().LatencyInSamples(p.Params().SelectedMode())))
	}

	frames := clip.Frames()
	total := frames + latency
	work := make([]float64, total*numCh)
	copy(work, clip.Samples)

	res := Result{LatencyFrames: latency, PeakIn: clip.Peak()}

	for off := 0; off < total; off += chunk {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		end := min(off+chunk, total)
		seg := work[off*numCh : end*numCh]
		if err := p.ProcessInterleaved(seg); err != nil {
			return Result{}, fmt.Errorf("render: at frame %d: %w", off, err)
		}

		peak := 0.0
		for _, v := range seg {
			peak = max(peak, math.Abs(v))
		}
		res.PeakOut = max(res.PeakOut, peak)

		if opts.Progress != nil {
			opts.Progress(end, total, peak)
		}
	}

	out := work[latency*numCh:]
	for _, v := range out {
		if math.Abs(v) > 1 {
			res.ClippedSamples++
		}
	}

	res.Clip = &audio.Clip{
		SampleRate:  clip.SampleRate,
		NumChannels: numCh,
		BitDepth:    clip.BitDepth,
		Samples:     out,
	}
	res.LoudnessIn = integrated(clip)
	res.LoudnessOut = integrated(res.Clip)
	return res, nil
}

func integrated(c *audio.Clip) float64 {
	m, err := loudness.NewMeter(float64(c.SampleRate), c.NumChannels)
	if err != nil {
		return math.Inf(-1)
	}
	if err := m.ProcessInterleaved(c.Samples); err != nil {
		return math.Inf(-1)
	}
	return m.Integrated()
}
