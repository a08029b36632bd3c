// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

// MonoFoldID identifies the mono fold effect capability.
var MonoFoldID = uuid.MustParse("9b3c7d2a-1e4f-4a6b-8c0d-2e3f4a5b6c04")

// MonoFold replaces every sample of a frame with the mean of that frame. The
// channel count is kept so effects after it see an unchanged format.
type MonoFold struct {
	binding
}

// NewMonoFold returns a mono fold-down effect.
func NewMonoFold() *MonoFold { return &MonoFold{} }

func (*MonoFold) Name() string                    { return "mono" }
func (m *MonoFold) Reset()                        { m.unbind() }
func (m *MonoFold) Instantiate(rate, ch int) bool { return m.bind(rate, ch) }
func (*MonoFold) LatencyFrames() int              { return 0 }
func (*MonoFold) NeedsTrackChangeNotice() bool    { return false }

func (m *MonoFold) Process(c *audio.Chunk, abort *audio.AbortToken) {
	if !m.accepts(c, abort) || c.Channels == 1 {
		return
	}

	s := c.Samples
	channels := c.Channels
	invChannels := float32(1.0) / float32(channels)

	// Unrolled loop for common cases
	switch channels {
	case 2:
		for f := range c.Frames {
			idx := f << 1
			v := (s[idx] + s[idx+1]) * 0.5
			s[idx], s[idx+1] = v, v
		}
	case 4:
		for f := range c.Frames {
			idx := f << 2
			v := (s[idx] + s[idx+1] + s[idx+2] + s[idx+3]) * 0.25
			s[idx], s[idx+1], s[idx+2], s[idx+3] = v, v, v, v
		}
	default:
		for f := range c.Frames {
			base := f * channels
			sum := float32(0)
			for ch := range channels {
				sum += s[base+ch]
			}
			v := sum * invChannels
			for ch := range channels {
				s[base+ch] = v
			}
		}
	}
}
