// Package host adapts the valve saturator to a plugin-style host: a
// parameter set with lock-free value storage, per-block linear smoothing,
// channel-layout checks and integer latency publication.
//
// The UI or control thread writes [Parameter] values; the audio thread calls
// [Processor.Process], which pulls smoothed controls for each block and
// forwards them to the saturator.
package host
