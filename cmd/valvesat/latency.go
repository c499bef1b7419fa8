package main

import (
	"fmt"
	"math"

	"github.com/cwbudde/valvesat/dsp/effects/valve"
	"github.com/cwbudde/valvesat/internal/cli"
)

type latencyCmd struct {
	SampleRate float64 `name:"sample-rate" default:"48000" help:"Sample rate in Hz."`
}

func (c *latencyCmd) Run(rc *runContext) error {
	sat, err := valve.NewSaturator()
	if err != nil {
		return err
	}
	if err := sat.Prepare(c.SampleRate, 512, 1); err != nil {
		return err
	}

	tbl := cli.Table{
		Headers: []string{"Mode", "Oversampling", "Latency", "Reported", "Time"},
		Styled:  rc.interactive,
	}
	for _, m := range valve.Modes {
		lat := sat.LatencyInSamples(m)
		tbl.AddRow(
			m.String(),
			fmt.Sprintf("%dx", valve.OversamplingFactor(m)),
			fmt.Sprintf("%.4f", lat),
			fmt.Sprintf("%d", int(math.Ceil(lat))),
			fmt.Sprintf("%.3f ms", 1000*lat/c.SampleRate),
		)
	}

	rc.log.Debug("latency table", "sampleRate", c.SampleRate)
	_, err = fmt.Fprint(rc.stdout, tbl.String())
	return err
}
