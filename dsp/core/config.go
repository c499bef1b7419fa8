package core

import (
	"errors"
	"fmt"
)

// MaxChannels is the largest channel count a processor accepts.
const MaxChannels = 2

var (
	ErrSampleRate = errors.New("core: sample rate must be > 0 and finite")
	ErrBlockSize  = errors.New("core: block size must be > 0")
	ErrChannels   = fmt.Errorf("core: channel count must be in [1, %d]", MaxChannels)
)

// ProcessorConfig is the host-supplied setup shared by every processor.
type ProcessorConfig struct {
	SampleRate  float64
	BlockSize   int
	NumChannels int
}

// Validate returns the first problem with cfg, wrapping one of the Err*
// sentinels.
func (cfg ProcessorConfig) Validate() error {
	switch {
	case cfg.SampleRate <= 0 || !IsFinite(cfg.SampleRate):
		return fmt.Errorf("%w: %v", ErrSampleRate, cfg.SampleRate)
	case cfg.BlockSize <= 0:
		return fmt.Errorf("%w: %d", ErrBlockSize, cfg.BlockSize)
	case cfg.NumChannels < 1 || cfg.NumChannels > MaxChannels:
		return fmt.Errorf("%w: %d", ErrChannels, cfg.NumChannels)
	}

	return nil
}
