// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

var (
	// PassThroughID identifies the pass-through effect capability.
	PassThroughID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c01")

	// GainID identifies the gain effect capability.
	GainID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c02")
)

// PassThrough leaves every chunk as it is.
type PassThrough struct {
	binding
}

// NewPassThrough returns a pass-through effect.
func NewPassThrough() *PassThrough { return &PassThrough{} }

func (*PassThrough) Name() string                            { return "passthrough" }
func (p *PassThrough) Reset()                                { p.unbind() }
func (p *PassThrough) Instantiate(rate, ch int) bool         { return p.bind(rate, ch) }
func (*PassThrough) Process(*audio.Chunk, *audio.AbortToken) {}
func (*PassThrough) LatencyFrames() int                      { return 0 }
func (*PassThrough) NeedsTrackChangeNotice() bool            { return false }

var gainParams = paramSet{
	{Name: "gain", Description: "linear gain factor", Default: 1, Min: 0, Max: 16, Step: 0.01},
}

// Gain multiplies every sample by a constant factor. A factor of 1 is the
// identity.
type Gain struct {
	binding
	gain float64
}

// NewGain returns a gain effect with factor g.
func NewGain(g float64) *Gain { return &Gain{gain: g} }

func (*Gain) Name() string                    { return "gain" }
func (g *Gain) Reset()                        { g.unbind() }
func (g *Gain) Instantiate(rate, ch int) bool { return g.bind(rate, ch) }
func (*Gain) LatencyFrames() int              { return 0 }
func (*Gain) NeedsTrackChangeNotice() bool    { return false }

func (g *Gain) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if !g.accepts(c, abort) {
		return
	}
	c.Scale(float32(g.gain))
}

func (*Gain) Params() []Param { return gainParams }

func (g *Gain) Value(name string) float64 {
	if name == "gain" {
		return g.gain
	}
	return 0
}

func (g *Gain) SetParam(name string, v float64) error {
	if err := gainParams.check(g.Name(), name, v); err != nil {
		return err
	}
	g.gain = v
	return nil
}
