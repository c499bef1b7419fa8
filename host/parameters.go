package host

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/valvesat/dsp/effects/valve"
)

// Parameter IDs.
const (
	ParamInputTrim  = "inputTrim"
	ParamDrive      = "drive"
	ParamBias       = "bias"
	ParamSag        = "sag"
	ParamOutputTrim = "outputTrim"
	ParamMix        = "mix"
	ParamMode       = "mode"
)

// Parameters is the full automatable parameter set of the processor.
type Parameters struct {
	InputTrim  *Parameter
	Drive      *Parameter
	Bias       *Parameter
	Sag        *Parameter
	OutputTrim *Parameter
	Mix        *Parameter // percent
	Mode       *Parameter

	list []*Parameter
}

// NewParameters returns the parameter set at factory defaults.
func NewParameters() *Parameters {
	modeNames := make([]string, len(valve.Modes))
	for i, m := range valve.Modes {
		modeNames[i] = m.String()
	}

	ps := &Parameters{
		InputTrim:  newFloatParameter(ParamInputTrim, "Input Trim", "dB", -24, 24, 0.1, 0),
		Drive:      newFloatParameter(ParamDrive, "Drive", "dB", 0, 60, 0.1, 20),
		Bias:       newFloatParameter(ParamBias, "Bias", "", -0.6, 0.6, 0.01, 0),
		Sag:        newFloatParameter(ParamSag, "Sag", "", 0, 0.6, 0.01, 0.15),
		OutputTrim: newFloatParameter(ParamOutputTrim, "Output Trim", "dB", -24, 24, 0.1, 0),
		Mix:        newFloatParameter(ParamMix, "Mix", "%", 0, 100, 0.1, 100),
		Mode:       newChoiceParameter(ParamMode, "Mode", modeNames, int(valve.ModeTriode)),
	}
	ps.Drive.Skew = 0.4

	ps.list = []*Parameter{ps.InputTrim, ps.Drive, ps.Bias, ps.Sag, ps.OutputTrim, ps.Mix, ps.Mode}
	return ps
}

// All returns the parameters in display order.
func (ps *Parameters) All() []*Parameter { return ps.list }

// ByID looks up a parameter.
func (ps *Parameters) ByID(id string) (*Parameter, bool) {
	for _, p := range ps.list {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Reset restores every parameter to its default.
func (ps *Parameters) Reset() {
	for _, p := range ps.list {
		p.Reset()
	}
}

// SelectedMode returns the voicing chosen by the mode parameter.
func (ps *Parameters) SelectedMode() valve.Mode { return valve.Mode(ps.Mode.Index()) }

// Controls returns the current unsmoothed values as saturator controls.
func (ps *Parameters) Controls() valve.Controls {
	return valve.Controls{
		InputTrimDB:  ps.InputTrim.Value(),
		DriveDB:      ps.Drive.Value(),
		Bias:         ps.Bias.Value(),
		SagAmount:    ps.Sag.Value(),
		OutputTrimDB: ps.OutputTrim.Value(),
		Mix:          ps.Mix.Value() / 100,
		Mode:         ps.SelectedMode(),
	}
}

// SetControls writes c into the parameters, clamping each value.
func (ps *Parameters) SetControls(c valve.Controls) {
	ps.InputTrim.Set(c.InputTrimDB)
	ps.Drive.Set(c.DriveDB)
	ps.Bias.Set(c.Bias)
	ps.Sag.Set(c.SagAmount)
	ps.OutputTrim.Set(c.OutputTrimDB)
	ps.Mix.Set(c.Mix * 100)
	if c.Mode.Valid() {
		ps.Mode.Set(float64(c.Mode))
	}
}

// State is the persisted form of the parameter set.
type State struct {
	InputTrimDB  float64    `json:"inputTrim"`
	DriveDB      float64    `json:"drive"`
	Bias         float64    `json:"bias"`
	Sag          float64    `json:"sag"`
	OutputTrimDB float64    `json:"outputTrim"`
	MixPercent   float64    `json:"mix"`
	Mode         valve.Mode `json:"mode"`
}

// State captures the current values.
func (ps *Parameters) State() State {
	return State{
		InputTrimDB:  ps.InputTrim.Value(),
		DriveDB:      ps.Drive.Value(),
		Bias:         ps.Bias.Value(),
		Sag:          ps.Sag.Value(),
		OutputTrimDB: ps.OutputTrim.Value(),
		MixPercent:   ps.Mix.Value(),
		Mode:         ps.SelectedMode(),
	}
}

// SetState restores st. Out-of-range values are clamped.
func (ps *Parameters) SetState(st State) error {
	if !st.Mode.Valid() {
		return fmt.Errorf("host: invalid mode %d", int(st.Mode))
	}

	ps.InputTrim.Set(st.InputTrimDB)
	ps.Drive.Set(st.DriveDB)
	ps.Bias.Set(st.Bias)
	ps.Sag.Set(st.Sag)
	ps.OutputTrim.Set(st.OutputTrimDB)
	ps.Mix.Set(st.MixPercent)
	ps.Mode.Set(float64(st.Mode))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ps *Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(ps.State())
}

// UnmarshalJSON implements json.Unmarshaler. Fields missing from data keep
// their current values.
func (ps *Parameters) UnmarshalJSON(data []byte) error {
	st := ps.State()
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("host: decode state: %w", err)
	}
	return ps.SetState(st)
}
