// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"

	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

// RampID identifies the fade-in ramp capability.
var RampID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c03")

var rampParams = paramSet{
	{Name: "ms", Description: "fade-in length in milliseconds", Default: 10, Min: 0, Max: 10000, Step: 1},
}

// Ramp fades every track in linearly. It restarts on each track change
// notice, which is why it asks for one.
type Ramp struct {
	binding
	ms     float64
	length int64 // frames
	pos    int64
}

// NewRamp returns a fade-in of ms milliseconds.
func NewRamp(ms float64) *Ramp { return &Ramp{ms: ms} }

func (*Ramp) Name() string                 { return "ramp" }
func (*Ramp) LatencyFrames() int           { return 0 }
func (*Ramp) NeedsTrackChangeNotice() bool { return true }
func (r *Ramp) TrackChanged()              { r.pos = 0 }

func (r *Ramp) Reset() {
	r.unbind()
	r.length = 0
	r.pos = 0
}

func (r *Ramp) Instantiate(rate, ch int) bool {
	if !r.bind(rate, ch) {
		return false
	}
	r.length = int64(math.Round(r.ms * float64(rate) / 1000))
	r.pos = 0
	return true
}

func (r *Ramp) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if !r.accepts(c, abort) || r.pos >= r.length {
		return
	}
	n := min(int64(c.Frames), r.length-r.pos)
	for f := range int(n) {
		g := float32(float64(r.pos+int64(f)) / float64(r.length))
		base := f * c.Channels
		for ch := range c.Channels {
			c.Samples[base+ch] *= g
		}
	}
	r.pos += int64(c.Frames)
}

func (*Ramp) Params() []Param { return rampParams }

func (r *Ramp) Value(name string) float64 {
	if name == "ms" {
		return r.ms
	}
	return 0
}

func (r *Ramp) SetParam(name string, v float64) error {
	if err := rampParams.check(r.Name(), name, v); err != nil {
		return err
	}
	r.ms = v
	if r.rate > 0 {
		r.length = int64(math.Round(v * float64(r.rate) / 1000))
	}
	return nil
}
