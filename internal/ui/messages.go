package ui

import "time"

// StartMsg announces a render.
type StartMsg struct {
	Input  string
	Output string
	Frames int
	Mode   string
}

// ProgressMsg reports frames rendered so far.
type ProgressMsg struct {
	Done  int
	Total int
	Peak  float64 // linear peak of the last chunk
}

// CompleteMsg ends a render.
type CompleteMsg struct {
	Elapsed time.Duration
	Clipped int
	Err     error
}
