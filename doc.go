// SPDX-License-Identifier: EPL-2.0

// Package audhost hosts pluggable audio decoders and effects.
//
// A Host resolves a decoder for a path through a service.Registry, opens it,
// binds a dsp.Chain to the stream format and pumps blocks of samples from the
// decoder through the chain into a Sink until the stream ends or the abort
// token fires. The decoder is closed on every way out.
//
// # Quick Start
//
//	reg := service.NewRegistry()
//	audhost.RegisterBuiltins(reg)
//
//	host := audhost.New(
//		audhost.WithRegistry(reg),
//		audhost.WithChain(dsp.Preset{Effect: "gain", Params: map[string]float64{"gain": 0.5}}),
//	)
//
//	var meter audhost.MeterSink
//	stats, err := host.Play("song.mp3", &meter, audio.NewAbortToken())
//
// # Supported Formats
//
// RegisterBuiltins registers these decoders, tried in this order:
//   - WAV (8/16/24/32-bit PCM) via formats/wav
//   - AIFF via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - generated test tones ("synth:sine?freq=440") via formats/synth
//
// and the effects of package dsp: passthrough, gain, ramp, mono, limiter and
// echo.
//
// # Sinks
//
// A sink receives each processed chunk. The chunk's storage is reused for the
// next block, so a sink that keeps data must copy it. Collector keeps
// everything in memory, MeterSink tracks levels, ResampleSink converts the
// sample rate before handing chunks on, and wav.Sink writes a WAV file.
//
// # Cancellation
//
// Play takes an *audio.AbortToken; PlayContext derives one from a context.
// An abort is a normal way to finish: Play returns Stats with Aborted set and
// a nil error.
package audhost
