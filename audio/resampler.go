// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"github.com/ik5/audhost/utils"
)

// Resampler converts a stream of chunks to a target sample rate using cubic
// interpolation. Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// Chunks are pushed through Process; Flush drains the frames still held for
// interpolation once the stream ends.
type Resampler struct {
	dstRate  int
	srcRate  int
	ratio    float64 // srcRate / dstRate - how many source frames per output frame
	channels int

	// Window of 4 frames for cubic interpolation:
	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32
	have   int
	// Input index of frames[1] and of the last frame pushed.
	cur  int64
	last int64

	// Position between frames[1] and frames[2], in source frames.
	pos float64

	// One-pole low-pass state used when downsampling.
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

// NewResampler returns a resampler producing dstRate output.
func NewResampler(dstRate int) *Resampler {
	return &Resampler{dstRate: dstRate, last: -1}
}

// SampleRate returns the output rate.
func (r *Resampler) SampleRate() int { return r.dstRate }

func (r *Resampler) configure(srcRate, channels int) {
	r.srcRate = srcRate
	r.channels = channels
	r.ratio = float64(srcRate) / float64(r.dstRate)
	r.useFilter = r.ratio > 1.0
	// Simple one-pole low-pass filter; a proper FIR belongs in a DSP effect.
	r.filterAlpha = 0.5
	r.filterState = make([]float32, channels)
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}
	r.have = 0
	r.cur = 0
	r.last = -1
	r.pos = 0
}

// Process appends the resampled frames for in to out. A change of input
// format restarts the interpolation window.
func (r *Resampler) Process(in, out *Chunk) {
	if in.Empty() {
		return
	}
	if in.SampleRate != r.srcRate || in.Channels != r.channels {
		r.configure(in.SampleRate, in.Channels)
	}
	if out.Empty() {
		out.Resize(0, r.channels, r.dstRate)
	}

	for f := range in.Frames {
		r.push(in.Samples[f*r.channels:(f+1)*r.channels], out)
	}
}

// Flush emits the frames still held in the interpolation window and resets
// the resampler for a new stream.
func (r *Resampler) Flush(out *Chunk) {
	if r.last < 0 {
		return
	}
	if out.Empty() {
		out.Resize(0, r.channels, r.dstRate)
	}

	if r.have < 4 {
		tail := r.frames[r.have-1]
		for r.have < 4 {
			copy(r.frames[r.have], tail)
			r.have++
		}
		r.emit(out)
	}
	for r.cur < r.last {
		r.shift(r.frames[3])
		r.emit(out)
	}

	r.configure(r.srcRate, r.channels)
}

func (r *Resampler) push(frame []float32, out *Chunk) {
	r.last++

	if r.useFilter {
		if r.last == 0 {
			// Seed the filter with the first frame to avoid a warm-up transient.
			copy(r.filterState, frame)
		}
		for c := range r.channels {
			// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			r.filterState[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		}
		frame = r.filterState
	}

	switch {
	case r.have == 0:
		// The first frame doubles as its own predecessor.
		copy(r.frames[0], frame)
		copy(r.frames[1], frame)
		r.have = 2
	case r.have < 4:
		copy(r.frames[r.have], frame)
		r.have++
		if r.have == 4 {
			r.emit(out)
		}
	default:
		r.shift(frame)
		r.emit(out)
	}
}

// shift drops frames[0] and appends frame, advancing the window by one.
func (r *Resampler) shift(frame []float32) {
	first := r.frames[0]
	r.frames[0] = r.frames[1]
	r.frames[1] = r.frames[2]
	r.frames[2] = r.frames[3]
	copy(first, frame)
	r.frames[3] = first
	r.cur++
}

// emit writes every output frame that falls between frames[1] and frames[2].
func (r *Resampler) emit(out *Chunk) {
	for r.pos < 1.0 {
		out.Samples = utils.CubicInterpolateFrame(out.Samples,
			r.frames[0], r.frames[1], r.frames[2], r.frames[3], float32(r.pos))
		out.Frames++
		r.pos += r.ratio
	}
	r.pos -= 1.0
}
