// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
	"github.com/jfreymuth/oggvorbis"
)

// ID identifies the Ogg Vorbis decoder capability.
var ID = uuid.MustParse("6f1d2c3e-8a4b-4c5d-9e0f-1a2b3c4d5e04")

// ErrNotSeekable is returned by SeekFrame when the input could not seek.
var ErrNotSeekable = errors.New("ogg input is not seekable")

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	seekable   bool
	comments   []string // raw "NAME=value" entries
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) CanSeek() bool   { return s.seekable }

// Frames returns the stream length; oggvorbis counts it per channel.
func (s *source) Frames() int64 {
	if !s.seekable {
		return 0
	}
	return max(s.dec.Length(), 0)
}

func (s *source) SeekFrame(frame int64) error {
	if !s.seekable {
		return ErrNotSeekable
	}
	if err := s.dec.SetPosition(frame); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadTags reports Vorbis comments. Names repeat for multi-valued tags such as
// several ARTIST entries, and entries without '=' are ignored.
func (s *source) ReadTags(meta *audio.Metadata) {
	for _, c := range s.comments {
		name, value, ok := strings.Cut(c, "=")
		if !ok || name == "" {
			continue
		}
		meta.Add(name, value)
	}
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// Only ask for whole frames so channels stay aligned
	n, err := s.dec.Read(dst[:len(dst)/s.channels*s.channels])
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	return n, err
}

// Codec decodes Ogg Vorbis streams through jfreymuth/oggvorbis.
type Codec struct{}

func (Codec) Name() string { return "vorbis" }

func (Codec) IsOurPath(path string) bool {
	return audio.MatchExtension(path, ".ogg", ".oga")
}

func (Codec) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		seekable:   seekable,
		comments:   dec.CommentHeader().Comments,
	}, nil
}

// New returns a closed Ogg Vorbis input decoder.
func New(opts ...audio.DecoderOption) audio.InputDecoder {
	return audio.NewDecoder(Codec{}, opts...)
}
