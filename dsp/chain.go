// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"slices"

	"github.com/ik5/audhost/audio"
)

// Chain runs effects in insertion order. It owns the effects added to it and,
// like its effects, belongs to one playback session at a time.
type Chain struct {
	effects  []Effect
	rate     int
	channels int
	ready    bool
}

// NewChain returns a chain of effects.
func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: slices.Clone(effects)}
}

// Add appends e. The chain has to be instantiated again before the next
// Process.
func (c *Chain) Add(e Effect) {
	c.effects = append(c.effects, e)
	c.ready = false
}

// Remove drops the effect at index i and returns it.
func (c *Chain) Remove(i int) (Effect, bool) {
	if i < 0 || i >= len(c.effects) {
		return nil, false
	}
	e := c.effects[i]
	c.effects = slices.Delete(c.effects, i, i+1)
	return e, true
}

// Clear drops every effect.
func (c *Chain) Clear() {
	clear(c.effects)
	c.effects = c.effects[:0]
}

// Len returns the number of effects.
func (c *Chain) Len() int { return len(c.effects) }

// At returns the effect at index i, or nil.
func (c *Chain) At(i int) Effect {
	if i < 0 || i >= len(c.effects) {
		return nil
	}
	return c.effects[i]
}

// Names lists the effect names in processing order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.effects))
	for i, e := range c.effects {
		names[i] = e.Name()
	}
	return names
}

// Instantiate binds every effect to the format in order. The first effect
// that refuses stops the walk and fails the chain.
func (c *Chain) Instantiate(sampleRate, channels int) error {
	c.ready = false
	for i, e := range c.effects {
		if !e.Instantiate(sampleRate, channels) {
			return fmt.Errorf("%w: %s (#%d) at %d Hz, %d channels",
				ErrInstantiate, e.Name(), i, sampleRate, channels)
		}
	}
	c.rate, c.channels, c.ready = sampleRate, channels, true
	return nil
}

// Instantiated reports whether the chain is bound to the given format.
func (c *Chain) Instantiated(sampleRate, channels int) bool {
	return c.ready && c.rate == sampleRate && c.channels == channels
}

// Process runs chunk through every effect. The token is checked before each
// effect, so an abort takes effect after at most one effect's work on one
// chunk. It reports whether every effect ran.
func (c *Chain) Process(chunk *audio.Chunk, abort *audio.AbortToken) bool {
	if chunk.Empty() {
		return !abort.Aborted()
	}
	for _, e := range c.effects {
		if abort.Aborted() {
			return false
		}
		e.Process(chunk, abort)
	}
	return !abort.Aborted()
}

// Latency sums the latency of every effect, in frames.
func (c *Chain) Latency() int {
	total := 0
	for _, e := range c.effects {
		total += e.LatencyFrames()
	}
	return total
}

// NeedsTrackChangeNotice reports whether any effect asked for the notice.
func (c *Chain) NeedsTrackChangeNotice() bool {
	return slices.ContainsFunc(c.effects, Effect.NeedsTrackChangeNotice)
}

// TrackChanged tells the effects that asked for it that a new track starts.
func (c *Chain) TrackChanged() {
	for _, e := range c.effects {
		if !e.NeedsTrackChangeNotice() {
			continue
		}
		if tc, ok := e.(TrackChanger); ok {
			tc.TrackChanged()
		}
	}
}

// Reset resets every effect. The chain has to be instantiated again.
func (c *Chain) Reset() {
	for _, e := range c.effects {
		e.Reset()
	}
	c.ready = false
}
