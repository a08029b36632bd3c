// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"time"
)

// Speaker masks reported by Chunk.ChannelMask for the common layouts.
const (
	MaskMono      uint32 = 0x4
	MaskStereo    uint32 = 0x3
	MaskStereoLFE uint32 = 0x103
	MaskSurround5 uint32 = 0x37
	MaskSurround7 uint32 = 0xFF
)

// Chunk is one buffer of interleaved float32 samples in [-1,1] together with
// its format. len(Samples) == Frames*Channels holds after every method call;
// an empty chunk has Frames == 0 and no samples.
//
// A chunk is owned by exactly one stage at a time. Sinks that want to keep the
// data past the call that delivered it must Copy it, since the pipeline reuses
// the storage for the next block.
type Chunk struct {
	Samples    []float32
	Frames     int
	Channels   int
	SampleRate int
}

// NewChunk returns a chunk of frames silent frames.
func NewChunk(frames, channels, sampleRate int) *Chunk {
	c := &Chunk{}
	c.Resize(frames, channels, sampleRate)
	return c
}

// Silence is an alias of NewChunk that reads better at call sites producing
// padding.
func Silence(frames, channels, sampleRate int) *Chunk {
	return NewChunk(frames, channels, sampleRate)
}

// Resize sets the format and frame count, reusing the backing storage when it
// is large enough. Newly exposed samples are zeroed.
func (c *Chunk) Resize(frames, channels, sampleRate int) {
	if frames < 0 || channels <= 0 {
		frames = 0
	}
	n := frames * max(channels, 0)
	old := len(c.Samples)
	if cap(c.Samples) < n {
		grown := make([]float32, n)
		copy(grown, c.Samples)
		c.Samples = grown
	} else {
		c.Samples = c.Samples[:n]
	}
	for i := old; i < n; i++ {
		c.Samples[i] = 0
	}
	c.Frames = frames
	c.Channels = channels
	c.SampleRate = sampleRate
}

// Truncate shrinks the chunk to frames frames without touching the format.
func (c *Chunk) Truncate(frames int) {
	if frames < 0 {
		frames = 0
	}
	if frames >= c.Frames {
		return
	}
	c.Frames = frames
	c.Samples = c.Samples[:frames*c.Channels]
}

// Reset empties the chunk. Format fields are kept so an empty chunk still
// describes the stream it came from.
func (c *Chunk) Reset() {
	c.Samples = c.Samples[:0]
	c.Frames = 0
}

// SetData replaces the contents with a copy of samples.
func (c *Chunk) SetData(samples []float32, channels, sampleRate int) error {
	if channels <= 0 || len(samples)%channels != 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrChunkLayout, len(samples), channels)
	}
	c.Resize(len(samples)/channels, channels, sampleRate)
	copy(c.Samples, samples)
	return nil
}

// CopyFrom makes c an exact copy of src.
func (c *Chunk) CopyFrom(src *Chunk) {
	if c == src {
		return
	}
	c.Resize(src.Frames, src.Channels, src.SampleRate)
	copy(c.Samples, src.Samples)
}

// Copy returns a deep copy of c.
func (c *Chunk) Copy() *Chunk {
	dup := &Chunk{}
	dup.CopyFrom(c)
	return dup
}

// Append concatenates other to the end of c. Both chunks must share sample
// rate and channel count unless c is empty.
func (c *Chunk) Append(other *Chunk) error {
	if other.Empty() {
		return nil
	}
	if c.Empty() {
		c.CopyFrom(other)
		return nil
	}
	if c.Channels != other.Channels || c.SampleRate != other.SampleRate {
		return fmt.Errorf("%w: %dch@%dHz vs %dch@%dHz", ErrFormatMismatch,
			c.Channels, c.SampleRate, other.Channels, other.SampleRate)
	}
	c.Samples = append(c.Samples, other.Samples...)
	c.Frames += other.Frames
	return nil
}

// Empty reports whether the chunk carries no frames.
func (c *Chunk) Empty() bool { return c == nil || c.Frames == 0 }

// Valid reports whether the chunk holds data in a usable format and the
// sample/frame invariant holds.
func (c *Chunk) Valid() bool {
	return c.Frames > 0 && c.Channels > 0 && c.SampleRate > 0 &&
		len(c.Samples) == c.Frames*c.Channels
}

// Duration of the chunk at its sample rate.
func (c *Chunk) Duration() time.Duration {
	if c.Frames == 0 || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.Frames) / float64(c.SampleRate) * float64(time.Second))
}

// ChannelMask returns the speaker mask for the chunk's channel count.
func (c *Chunk) ChannelMask() uint32 {
	return ChannelMask(c.Channels)
}

// ChannelMask maps a channel count to a speaker mask.
func ChannelMask(channels int) uint32 {
	switch channels {
	case 1:
		return MaskMono
	case 2:
		return MaskStereo
	case 3:
		return MaskStereoLFE
	case 6:
		return MaskSurround5
	case 8:
		return MaskSurround7
	}
	if channels <= 0 || channels > 32 {
		return 0
	}
	return uint32(1)<<uint(channels) - 1
}

// Scale multiplies every sample by gain.
func (c *Chunk) Scale(gain float32) {
	if gain == 1 {
		return
	}
	for i := range c.Samples {
		c.Samples[i] *= gain
	}
}

// ApplyRamp applies a linear gain ramp from start to end across the chunk.
// All channels of a frame receive the same gain.
func (c *Chunk) ApplyRamp(start, end float32) {
	if c.Frames == 0 || (start == 1 && end == 1) {
		return
	}
	step := float32(0)
	if c.Frames > 1 {
		step = (end - start) / float32(c.Frames-1)
	}
	for f := range c.Frames {
		g := start + step*float32(f)
		base := f * c.Channels
		for ch := range c.Channels {
			c.Samples[base+ch] *= g
		}
	}
}

// Peak returns the largest absolute sample value.
func (c *Chunk) Peak() float32 {
	var peak float32
	for _, s := range c.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// RMS returns the root mean square over all samples.
func (c *Chunk) RMS() float32 {
	if len(c.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range c.Samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(c.Samples))))
}
