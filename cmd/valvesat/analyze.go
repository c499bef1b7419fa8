package main

import (
	"fmt"

	"github.com/cwbudde/valvesat/dsp/core"
	"github.com/cwbudde/valvesat/dsp/effects/valve"
	"github.com/cwbudde/valvesat/dsp/window"
	"github.com/cwbudde/valvesat/internal/cli"
	"github.com/cwbudde/valvesat/measure/thd"
)

type analyzeCmd struct {
	effectFlags `embed:""`

	SampleRate float64 `name:"sample-rate" default:"48000" help:"Sample rate in Hz."`
	Freq       float64 `default:"1000" help:"Test tone frequency in Hz."`
	Level      float64 `default:"-6" help:"Test tone level in dBFS."`
	FFTSize    int     `name:"fft-size" default:"8192" help:"Analysis length, a power of two."`
	Window     string  `default:"hann" enum:"hann,rectangular,hamming,blackman,blackman-harris,flattop,kaiser" help:"Analysis window."`
	All        bool    `default:"true" negatable:"" help:"Profile every mode instead of only --mode."`
}

func (c *analyzeCmd) Run(rc *runContext) error {
	win, err := window.ParseType(c.Window)
	if err != nil {
		return err
	}

	modes := valve.Modes[:]
	if !c.All {
		m, err := valve.ParseMode(c.Mode)
		if err != nil {
			return err
		}
		modes = []valve.Mode{m}
	}

	tbl := cli.Table{
		Headers: []string{"Mode", "THD", "THD+N", "H2", "H3", "Even", "Odd", "Even/Odd"},
		Styled:  rc.interactive,
	}

	for _, m := range modes {
		ps, err := c.parameters()
		if err != nil {
			return err
		}
		ps.Mode.Set(float64(m))

		p, err := newProcessor(ps, c.SampleRate, 512, 1)
		if err != nil {
			return err
		}

		res, err := thd.Profile(p, thd.ProfileConfig{
			Config: thd.Config{
				SampleRate:      c.SampleRate,
				FFTSize:         c.FFTSize,
				FundamentalFreq: c.Freq,
				Window:          win,
			},
			Amplitude: core.DBToLinear(c.Level),
			BlockSize: 512,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		rc.log.Debug("profile", "mode", m, "thd", res.THD, "even", res.EvenHD, "odd", res.OddHD)

		tbl.AddRow(
			m.String(),
			percent(res.THD),
			percent(res.THDN),
			percent(res.Harmonic(2)),
			percent(res.Harmonic(3)),
			percent(res.EvenHD),
			percent(res.OddHD),
			fmt.Sprintf("%.2f", res.EvenOddRatio()),
		)
	}

	_, err = fmt.Fprint(rc.stdout, tbl.String())
	return err
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", 100*v)
}
