// SPDX-License-Identifier: EPL-2.0

// Package synth is a decoder that generates test tones instead of reading a
// file. Paths select the waveform and its parameters:
//
//	synth:sine?freq=440&seconds=3&rate=44100&channels=2
//	synth:noise?seconds=0          (endless, unknown length)
//
// Available waveforms are sine, square, saw, noise and silence. The noise
// generator is seeded, so two decoders opened on the same path produce the
// same samples.
package synth
