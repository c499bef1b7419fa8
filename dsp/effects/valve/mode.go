package valve

import (
	"fmt"
	"strings"
)

// Mode selects a voicing.
type Mode int

const (
	// ModeTriode is the gentle, even-harmonic voicing at 4x oversampling.
	ModeTriode Mode = iota
	// ModePentode is brighter and more asymmetric, at 4x oversampling.
	ModePentode
	// ModeTorture is the hard-driven voicing at 8x oversampling.
	ModeTorture

	numModes
)

// Modes lists the defined voicings in order.
var Modes = [numModes]Mode{ModeTriode, ModePentode, ModeTorture}

var modeNames = [numModes]string{"triode", "pentode", "torture"}

// String returns the lower-case voicing name.
func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Valid reports whether m is one of the defined voicings.
func (m Mode) Valid() bool { return m >= 0 && m < numModes }

// ParseMode parses a voicing name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("valve: unknown mode %q (want triode, pentode or torture)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("valve: invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Curve holds the valve shaper parameters.
type Curve struct {
	Curvature float64 // a
	Asymmetry float64 // b
}

// voicing is everything a mode changes in the signal path.
type voicing struct {
	curve  Curve
	stages int // 2 -> 4x, 3 -> 8x

	preMidGainDB   float64
	preShelfGainDB float64

	postLowpassHz   float64
	postShelfGainDB float64
	postDipGainDB   float64
}

var modeTable = [numModes]voicing{
	ModeTriode: {
		curve:           Curve{Curvature: 2.5, Asymmetry: 0.5},
		stages:          2,
		preMidGainDB:    4,
		preShelfGainDB:  2,
		postLowpassHz:   14000,
		postShelfGainDB: 2,
		postDipGainDB:   -2,
	},
	ModePentode: {
		curve:           Curve{Curvature: 4.0, Asymmetry: 0.85},
		stages:          2,
		preMidGainDB:    8,
		preShelfGainDB:  3,
		postLowpassHz:   11000,
		postShelfGainDB: 3.5,
		postDipGainDB:   -4,
	},
	ModeTorture: {
		curve:           Curve{Curvature: 8.0, Asymmetry: 0.7},
		stages:          3,
		preMidGainDB:    6,
		preShelfGainDB:  4,
		postLowpassHz:   8000,
		postShelfGainDB: 4,
		postDipGainDB:   -6,
	},
}

// fallbackVoicing is used for out-of-range modes.
var fallbackVoicing = voicing{
	curve:           Curve{Curvature: 4.0, Asymmetry: 0.5},
	stages:          2,
	preMidGainDB:    6,
	preShelfGainDB:  3,
	postLowpassHz:   12000,
	postShelfGainDB: 3,
	postDipGainDB:   -3,
}

func voicingFor(m Mode) *voicing {
	if !m.Valid() {
		return &fallbackVoicing
	}
	return &modeTable[m]
}

// CurveFor returns the shaper curve of mode m.
func CurveFor(m Mode) Curve { return voicingFor(m).curve }

// OversamplingFactor returns the oversampling factor used by mode m.
func OversamplingFactor(m Mode) int { return 1 << voicingFor(m).stages }
