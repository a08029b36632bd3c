// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/ik5/audhost/audio"
)

// Effect is the DSP capability.
//
// Instantiate must succeed before Process is called. Process on an effect that
// was never instantiated, or that was Reset since, leaves the chunk untouched.
// Process must not change the chunk's format and must skip an empty chunk or
// an aborted token.
type Effect interface {
	Name() string
	// Reset drops every bit of state, including the format binding.
	Reset()
	// Instantiate binds the effect to a format and reports whether it can
	// run in it.
	Instantiate(sampleRate, channels int) bool
	Process(c *audio.Chunk, abort *audio.AbortToken)
	// LatencyFrames is the delay the effect adds to the signal.
	LatencyFrames() int
	NeedsTrackChangeNotice() bool
}

// TrackChanger is implemented by effects that asked for a track change
// notice.
type TrackChanger interface {
	TrackChanged()
}

// Configurable is implemented by effects with named parameters.
type Configurable interface {
	Params() []Param
	// Value returns the current value of name, or 0 for an unknown name.
	Value(name string) float64
	SetParam(name string, value float64) error
}

// Param describes one effect parameter.
type Param struct {
	Name        string
	Description string
	Default     float64
	Min         float64
	Max         float64
	Step        float64
}

// Preset names an effect and the parameters to set on it.
type Preset struct {
	Effect string             `yaml:"effect"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// Configure applies params to e in name order.
func Configure(e Effect, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	cfg, ok := e.(Configurable)
	if !ok {
		return fmt.Errorf("%w: %s takes no parameters", ErrUnknownParam, e.Name())
	}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if err := cfg.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}

// Values returns the current parameter values of e, or nil when e has none.
func Values(e Effect) map[string]float64 {
	cfg, ok := e.(Configurable)
	if !ok {
		return nil
	}
	values := make(map[string]float64)
	for _, p := range cfg.Params() {
		values[p.Name] = cfg.Value(p.Name)
	}
	return values
}

type paramSet []Param

func (ps paramSet) check(effect, name string, v float64) error {
	for _, p := range ps {
		if p.Name != name {
			continue
		}
		if math.IsNaN(v) || v < p.Min || v > p.Max {
			return fmt.Errorf("%w: %s %s=%g not in [%g, %g]", ErrParamRange, effect, name, v, p.Min, p.Max)
		}
		return nil
	}
	return fmt.Errorf("%w: %s has no %q", ErrUnknownParam, effect, name)
}

// binding is the format an effect was instantiated for.
type binding struct {
	rate     int
	channels int
}

func (b *binding) bind(rate, channels int) bool {
	if rate <= 0 || channels <= 0 {
		b.unbind()
		return false
	}
	b.rate, b.channels = rate, channels
	return true
}

func (b *binding) unbind() { b.rate, b.channels = 0, 0 }

// accepts reports whether c should be processed: the effect is bound, the
// chunk has data in the bound format and the token is not set.
func (b *binding) accepts(c *audio.Chunk, abort *audio.AbortToken) bool {
	return b.rate > 0 && !c.Empty() && !abort.Aborted() &&
		c.SampleRate == b.rate && c.Channels == b.channels
}

// planar hands each channel of c to fn as a contiguous float64 buffer and
// writes the result back. scratch is reused across calls.
func planar(c *audio.Chunk, scratch *[]float64, fn func(ch int, buf []float64)) {
	if cap(*scratch) < c.Frames {
		*scratch = make([]float64, c.Frames)
	}
	buf := (*scratch)[:c.Frames]
	channels := c.Channels
	for ch := range channels {
		for f := range buf {
			buf[f] = float64(c.Samples[f*channels+ch])
		}
		fn(ch, buf)
		for f, v := range buf {
			c.Samples[f*channels+ch] = float32(v)
		}
	}
}
