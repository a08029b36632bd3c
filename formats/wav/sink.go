// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/utils"
)

// Sink renders chunks into a PCM WAV stream with go-audio/wav. The output
// format is taken from the first chunk written; later chunks must match it.
// Close patches the header sizes, so w has to be seekable.
type Sink struct {
	w        io.WriteSeeker
	bitDepth int

	enc      *wav.Encoder
	rate     int
	channels int
	frames   int64
	buf      *goaudio.IntBuffer
}

// NewSink returns a sink writing bitDepth-bit samples (16, 24 or 32) to w.
func NewSink(w io.WriteSeeker, bitDepth int) (*Sink, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	return &Sink{w: w, bitDepth: bitDepth, buf: &goaudio.IntBuffer{}}, nil
}

// Write encodes c. Empty chunks are ignored.
func (s *Sink) Write(c *audio.Chunk) error {
	if c.Empty() {
		return nil
	}

	if s.enc == nil {
		s.rate = c.SampleRate
		s.channels = c.Channels
		s.enc = wav.NewEncoder(s.w, s.rate, s.bitDepth, s.channels, formatPCM)
		s.buf.Format = &goaudio.Format{NumChannels: s.channels, SampleRate: s.rate}
		s.buf.SourceBitDepth = s.bitDepth
	} else if c.SampleRate != s.rate || c.Channels != s.channels {
		return fmt.Errorf("%w: got %dch@%dHz, writing %dch@%dHz",
			ErrSinkFormat, c.Channels, c.SampleRate, s.channels, s.rate)
	}

	if cap(s.buf.Data) < len(c.Samples) {
		s.buf.Data = make([]int, len(c.Samples))
	}
	s.buf.Data = s.buf.Data[:len(c.Samples)]
	for i, v := range c.Samples {
		s.buf.Data[i] = utils.Float32ToInt(v, s.bitDepth)
	}

	if err := s.enc.Write(s.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.frames += int64(c.Frames)
	return nil
}

// Frames returns the number of frames written so far.
func (s *Sink) Frames() int64 { return s.frames }

// Close finalizes the header. It does not close the underlying writer. A sink
// that never received audio writes nothing.
func (s *Sink) Close() error {
	if s.enc == nil {
		return nil
	}
	if err := s.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	s.enc = nil
	return nil
}
