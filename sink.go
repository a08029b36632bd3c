// SPDX-License-Identifier: EPL-2.0

package audhost

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/utils"
)

// Sink receives processed chunks in delivery order. The chunk is only valid
// for the duration of the call.
type Sink interface {
	Write(c *audio.Chunk) error
}

// Flusher is implemented by sinks that hold data back. The host flushes
// once after the last track.
type Flusher interface {
	Flush() error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(c *audio.Chunk) error

func (f SinkFunc) Write(c *audio.Chunk) error { return f(c) }

// Collector keeps a copy of everything written to it.
type Collector struct {
	Data   audio.Chunk
	Chunks int
}

func (c *Collector) Write(chunk *audio.Chunk) error {
	if err := c.Data.Append(chunk); err != nil {
		return err
	}
	c.Chunks++
	return nil
}

// PCM16 returns the collected samples as interleaved 16-bit PCM.
func (c *Collector) PCM16() []int16 {
	pcm := make([]int16, len(c.Data.Samples))
	for i, x := range c.Data.Samples {
		pcm[i] = utils.Float32ToInt16(x)
	}
	return pcm
}

// MeterSink tracks peak and RMS levels over everything written to it.
type MeterSink struct {
	Frames     int64
	SampleRate int
	Channels   int
	Peak       float32

	sumSquares float64
	samples    int64
}

func (m *MeterSink) Write(c *audio.Chunk) error {
	if c.Empty() {
		return nil
	}
	m.Frames += int64(c.Frames)
	m.SampleRate, m.Channels = c.SampleRate, c.Channels
	m.Peak = max(m.Peak, c.Peak())
	for _, s := range c.Samples {
		m.sumSquares += float64(s) * float64(s)
	}
	m.samples += int64(len(c.Samples))
	return nil
}

// RMS over every sample seen.
func (m *MeterSink) RMS() float32 {
	if m.samples == 0 {
		return 0
	}
	return float32(math.Sqrt(m.sumSquares / float64(m.samples)))
}

// Duration of the audio seen, at the most recent sample rate.
func (m *MeterSink) Duration() time.Duration {
	if m.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(m.Frames) / float64(m.SampleRate) * float64(time.Second))
}

// PeakDB returns the peak level in dBFS.
func (m *MeterSink) PeakDB() float64 {
	if m.Peak <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(float64(m.Peak))
}

// ResampleSink converts chunks to a fixed sample rate before writing them to
// the next sink. Flush drains the interpolation tail and flushes the next
// sink when it is a Flusher.
type ResampleSink struct {
	next Sink
	r    *audio.Resampler
	out  audio.Chunk
}

// NewResampleSink returns a sink writing sampleRate chunks to next.
func NewResampleSink(next Sink, sampleRate int) *ResampleSink {
	return &ResampleSink{next: next, r: audio.NewResampler(sampleRate)}
}

func (s *ResampleSink) Write(c *audio.Chunk) error {
	s.out.Reset()
	s.r.Process(c, &s.out)
	if s.out.Empty() {
		return nil
	}
	return s.next.Write(&s.out)
}

func (s *ResampleSink) Flush() error {
	s.out.Reset()
	s.r.Flush(&s.out)
	if !s.out.Empty() {
		if err := s.next.Write(&s.out); err != nil {
			return err
		}
	}
	if f, ok := s.next.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
	}
	return nil
}

type multiSink []Sink

// Tee returns a sink writing every chunk to each of sinks in order. The
// first error stops the write.
func Tee(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Write(c *audio.Chunk) error {
	for _, s := range m {
		if err := s.Write(c); err != nil {
			return err
		}
	}
	return nil
}

func (m multiSink) Flush() error {
	var errs []error
	for _, s := range m {
		if f, ok := s.(Flusher); ok {
			errs = append(errs, f.Flush())
		}
	}
	return errors.Join(errs...)
}
