// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
)

// ID identifies the generator decoder capability.
var ID = uuid.MustParse("6f1d2c3e-8a4b-4c5d-9e0f-1a2b3c4d5e05")

// Scheme prefixes every generator path.
const Scheme = "synth:"

var (
	// ErrBadPath indicates a generator path that cannot be parsed
	ErrBadPath = errors.New("invalid synth path")

	// ErrUnknownWaveform indicates a waveform name the generator does not know
	ErrUnknownWaveform = errors.New("unknown waveform")

	errNoResource = errors.New("synth sources are opened by path")
)

// Waveform produces the sample for frame n of a tone at freq Hz.
type Waveform func(n int64, freq float64, rate int) float32

var waveforms = map[string]Waveform{
	"sine": func(n int64, freq float64, rate int) float32 {
		t := float64(n) / float64(rate)
		return float32(math.Sin(2 * math.Pi * freq * t))
	},
	"square": func(n int64, freq float64, rate int) float32 {
		phase := math.Mod(float64(n)*freq/float64(rate), 1)
		if phase < 0.5 {
			return 1
		}
		return -1
	},
	"saw": func(n int64, freq float64, rate int) float32 {
		phase := math.Mod(float64(n)*freq/float64(rate), 1)
		return float32(2*phase - 1)
	},
	"silence": func(int64, float64, int) float32 { return 0 },
}

// Params describe a generated stream.
type Params struct {
	Waveform   string
	Freq       float64 // Hz
	Seconds    float64 // <= 0 means endless
	SampleRate int
	Channels   int
	Amplitude  float64
}

// DefaultParams is a three second 440 Hz stereo sine at CD rate.
func DefaultParams() Params {
	return Params{
		Waveform:   "sine",
		Freq:       440,
		Seconds:    3,
		SampleRate: 44100,
		Channels:   2,
		Amplitude:  1,
	}
}

// Path renders p as a generator path.
func (p Params) Path() string {
	q := url.Values{}
	q.Set("freq", strconv.FormatFloat(p.Freq, 'g', -1, 64))
	q.Set("seconds", strconv.FormatFloat(p.Seconds, 'g', -1, 64))
	q.Set("rate", strconv.Itoa(p.SampleRate))
	q.Set("channels", strconv.Itoa(p.Channels))
	q.Set("amp", strconv.FormatFloat(p.Amplitude, 'g', -1, 64))
	return Scheme + p.Waveform + "?" + q.Encode()
}

// ParsePath reads a path of the form
//
//	synth:<waveform>?freq=440&seconds=3&rate=44100&channels=2&amp=1
//
// Missing parameters take their DefaultParams value.
func ParsePath(path string) (Params, error) {
	p := DefaultParams()

	rest, ok := strings.CutPrefix(path, Scheme)
	if !ok {
		return p, fmt.Errorf("%w: %q lacks %q prefix", ErrBadPath, path, Scheme)
	}
	name, query, _ := strings.Cut(rest, "?")
	if name != "" {
		p.Waveform = strings.ToLower(name)
	}
	if _, ok := waveforms[p.Waveform]; !ok && p.Waveform != "noise" {
		return p, fmt.Errorf("%w: %q", ErrUnknownWaveform, p.Waveform)
	}

	q, err := url.ParseQuery(query)
	if err != nil {
		return p, fmt.Errorf("%w: %w", ErrBadPath, err)
	}

	floats := map[string]*float64{"freq": &p.Freq, "seconds": &p.Seconds, "amp": &p.Amplitude}
	for key, dst := range floats {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return p, fmt.Errorf("%w: %s=%q", ErrBadPath, key, v)
			}
			*dst = f
		}
	}
	ints := map[string]*int{"rate": &p.SampleRate, "channels": &p.Channels}
	for key, dst := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, fmt.Errorf("%w: %s=%q", ErrBadPath, key, v)
			}
			*dst = n
		}
	}

	if p.SampleRate <= 0 || p.Channels <= 0 || p.Channels > 32 {
		return p, fmt.Errorf("%w: %d channels at %d Hz", ErrBadPath, p.Channels, p.SampleRate)
	}
	return p, nil
}

// Source generates samples for Params. Every channel carries the same signal.
type Source struct {
	params Params
	wave   Waveform
	rng    *rand.Rand
	total  int64 // 0 when endless
	frame  int64
}

// NewSource returns a generator positioned at frame 0.
func NewSource(p Params) *Source {
	s := &Source{params: p, wave: waveforms[p.Waveform]}
	if p.Waveform == "noise" {
		s.rng = rand.New(rand.NewPCG(1, 2))
		s.wave = func(int64, float64, int) float32 {
			return float32(s.rng.Float64()*2 - 1)
		}
	}
	if p.Seconds > 0 {
		s.total = int64(math.Round(p.Seconds * float64(p.SampleRate)))
	}
	return s
}

func (s *Source) SampleRate() int { return s.params.SampleRate }
func (s *Source) Channels() int   { return s.params.Channels }
func (s *Source) Close() error    { return nil }
func (s *Source) CanSeek() bool   { return true }
func (s *Source) Frames() int64   { return s.total }

func (s *Source) SeekFrame(frame int64) error {
	if frame < 0 || (s.total > 0 && frame > s.total) {
		return fmt.Errorf("frame %d outside [0, %d]", frame, s.total)
	}
	s.frame = frame
	return nil
}

func (s *Source) ReadTags(meta *audio.Metadata) {
	meta.Set("TITLE", fmt.Sprintf("%s %g Hz", s.params.Waveform, s.params.Freq))
	meta.Set("ENCODER", "synth")
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	ch := s.params.Channels
	frames := int64(len(dst) / ch)
	if s.total > 0 {
		frames = min(frames, s.total-s.frame)
		if frames <= 0 {
			return 0, io.EOF
		}
	}

	amp := float32(s.params.Amplitude)
	for f := range frames {
		v := amp * s.wave(s.frame+f, s.params.Freq, s.params.SampleRate)
		base := int(f) * ch
		for c := range ch {
			dst[base+c] = v
		}
	}
	s.frame += frames

	n := int(frames) * ch
	if s.total > 0 && s.frame >= s.total {
		return n, io.EOF
	}
	return n, nil
}

// Codec exposes the generator as a decoder for Scheme paths.
type Codec struct{}

func (Codec) Name() string { return "synth" }

func (Codec) IsOurPath(path string) bool {
	return strings.HasPrefix(path, Scheme)
}

// Decode satisfies audio.Codec. audio.Decoder opens PathOpener codecs through
// OpenPath and never hands them a reader, so this always fails.
func (Codec) Decode(io.Reader) (audio.Source, error) {
	return nil, errNoResource
}

func (Codec) OpenPath(path string) (audio.Source, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return NewSource(p), nil
}

// New returns a closed generator decoder.
func New(opts ...audio.DecoderOption) audio.InputDecoder {
	return audio.NewDecoder(Codec{}, opts...)
}
