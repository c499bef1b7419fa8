package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/valvesat/dsp/effects/valve"
	"github.com/cwbudde/valvesat/host"
)

// effectFlags are the saturator controls shared by the processing commands.
type effectFlags struct {
	Mode       string  `short:"m" enum:"triode,pentode,torture" default:"triode" help:"Voicing (triode, pentode, torture)."`
	Drive      float64 `short:"d" default:"20" help:"Drive in dB, 0 to 60."`
	Bias       float64 `default:"0" help:"Operating point offset, -0.6 to 0.6."`
	Sag        float64 `default:"0.15" help:"Supply sag amount, 0 to 0.6."`
	InputTrim  float64 `name:"input-trim" default:"0" help:"Input trim in dB, -24 to 24."`
	OutputTrim float64 `name:"output-trim" default:"0" help:"Output trim in dB, -24 to 24."`
	Mix        float64 `default:"100" help:"Wet mix in percent."`
	State      string  `type:"existingfile" help:"Load a parameter state saved by play --save-state. Overrides the flags above."`
}

// parameters builds the parameter set the flags describe.
func (f *effectFlags) parameters() (*host.Parameters, error) {
	mode, err := valve.ParseMode(f.Mode)
	if err != nil {
		return nil, err
	}

	ps := host.NewParameters()
	ps.SetControls(valve.Controls{
		InputTrimDB:  f.InputTrim,
		DriveDB:      f.Drive,
		Bias:         f.Bias,
		SagAmount:    f.Sag,
		OutputTrimDB: f.OutputTrim,
		Mix:          f.Mix / 100,
		Mode:         mode,
	})

	if f.State != "" {
		data, err := os.ReadFile(f.State)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, ps); err != nil {
			return nil, fmt.Errorf("%s: %w", f.State, err)
		}
	}
	return ps, nil
}

func saveState(path string, ps *host.Parameters) error {
	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// newProcessor prepares a processor for the given stream format.
func newProcessor(ps *host.Parameters, sampleRate float64, blockSize, numChannels int, opts ...host.ProcessorOption) (*host.Processor, error) {
	p, err := host.NewProcessor(append([]host.ProcessorOption{host.WithParameters(ps)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if err := p.Prepare(sampleRate, blockSize, numChannels, numChannels); err != nil {
		return nil, err
	}
	return p, nil
}
