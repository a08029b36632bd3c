// SPDX-License-Identifier: EPL-2.0

// Package dsp provides the effect capability and the chain that runs effects
// over audio chunks.
//
// An effect is bound to one format with Instantiate and then processes chunks
// of that format in place:
//
//	chain := dsp.NewChain(dsp.NewGain(0.5), dsp.NewLimiter())
//	if err := chain.Instantiate(44100, 2); err != nil {
//		return err
//	}
//	chain.Process(chunk, abort)
//
// Effects that carry state across tracks (a fade-in, for example) ask for a
// track change notice; the chain forwards Chain.TrackChanged to them.
//
// Parameters are described by Param and set by name, so a chain can be built
// from Preset values read from configuration.
package dsp
