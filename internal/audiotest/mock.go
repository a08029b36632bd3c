// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/ik5/audhost/audio"
)

// ErrInjected is returned by sources configured to fail.
var ErrInjected = errors.New("injected failure")

// MockSource is a test helper that generates audio data for testing.
// It implements audio.Source, audio.Seeker, audio.Lengther and audio.Tagger.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	waveform    func(frame int, channel int) float32

	// Optional behavior
	Unseekable bool
	FailAfter  int // fail ReadSamples once this many frames were produced; 0 disables
	FailSeek   bool
	HideLength bool
	Tags       map[string][]string

	closed int
}

// NewMockSource creates a new mock audio source.
// totalFrames is the number of frames to generate.
// waveform is a function that generates sample values given frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return 0.0
	})
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource produces frame index n as n/totalFrames on every channel,
// which makes positions easy to assert.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		return float32(frame) / float32(totalFrames)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }

// Close counts calls so tests can check resources were released once.
func (m *MockSource) Close() error {
	m.closed++
	return nil
}

// Closed returns how many times Close was called.
func (m *MockSource) Closed() int { return m.closed }

// Generated returns the next frame index.
func (m *MockSource) Generated() int { return m.generated }

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) CanSeek() bool { return !m.Unseekable }

func (m *MockSource) SeekFrame(frame int64) error {
	if m.FailSeek {
		return ErrInjected
	}
	if frame < 0 || frame > int64(m.totalFrames) {
		return fmt.Errorf("frame %d out of range", frame)
	}
	m.generated = int(frame)
	return nil
}

func (m *MockSource) Frames() int64 {
	if m.HideLength {
		return 0
	}
	return int64(m.totalFrames)
}

func (m *MockSource) ReadTags(meta *audio.Metadata) {
	for name, values := range m.Tags {
		meta.Set(name, values...)
	}
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.FailAfter > 0 && m.generated >= m.FailAfter {
		return 0, ErrInjected
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	// Calculate how many frames we can write
	framesToWrite := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.FailAfter > 0 {
		framesToWrite = min(framesToWrite, m.FailAfter-m.generated)
	}

	// Generate samples
	for frame := range framesToWrite {
		idx := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(idx, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalFrames {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// Codec is an audio.Codec for tests. It claims paths by extension and turns
// every resource into a source built by New. A resource whose content starts
// with "BAD" is rejected as malformed.
type Codec struct {
	CodecName  string
	Extensions []string
	New        func() *MockSource

	mu      sync.Mutex
	sources []*MockSource
}

func (c *Codec) Name() string { return c.CodecName }

func (c *Codec) IsOurPath(path string) bool {
	return audio.MatchExtension(path, c.Extensions...)
}

func (c *Codec) Decode(r io.Reader) (audio.Source, error) {
	head := make([]byte, 3)
	n, _ := io.ReadFull(r, head)
	if string(head[:n]) == "BAD" {
		return nil, errors.New("bad header")
	}

	src := c.New()
	c.mu.Lock()
	c.sources = append(c.sources, src)
	c.mu.Unlock()
	return src, nil
}

// Sources returns every source the codec created, oldest first.
func (c *Codec) Sources() []*MockSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*MockSource(nil), c.sources...)
}

// Last returns the most recently created source, or nil.
func (c *Codec) Last() *MockSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sources) == 0 {
		return nil
	}
	return c.sources[len(c.sources)-1]
}
