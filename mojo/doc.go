// Package mojo assembles the oversampled saturation effect: a stereo
// processor that upsamples, shapes, downsamples, mixes dry and wet signal and
// applies output gain, together with the host-facing pieces around it
// (quality modes, lock-free parameter storage, factory presets and state
// persistence).
//
// The audio thread calls [Processor.ProcessBlock]; any other goroutine may
// write parameters through [ParamStore] at any time. [Processor.Prepare] and
// [Processor.Reset] must not overlap ProcessBlock.
package mojo
