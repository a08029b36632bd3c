// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/utils"
)

// ID identifies the MP3 decoder capability.
var ID = uuid.MustParse("6f1d2c3e-8a4b-4c5d-9e0f-1a2b3c4d5e03")

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = channels * 2
)

// ErrNotSeekable is returned by SeekFrame when the input could not seek.
var ErrNotSeekable = errors.New("mp3 input is not seekable")

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Seek(offset int64, whence int) (int64, error)
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	seekable   bool
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) CanSeek() bool   { return s.seekable }

// Frames derives the length from the decoded byte length, which go-mp3 only
// knows when the input is seekable.
func (s *source) Frames() int64 {
	if !s.seekable {
		return 0
	}
	if l := s.dec.Length(); l > 0 {
		return l / bytesPerFrame
	}
	return 0
}

func (s *source) SeekFrame(frame int64) error {
	if !s.seekable {
		return ErrNotSeekable
	}
	if _, err := s.dec.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Each sample is 2 bytes, so we need len(dst) * 2 bytes
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.IntToFloat32(int(v), 16)
	}

	return samples, err
}

// Codec decodes MPEG-1/2 Layer III streams through go-mp3.
type Codec struct{}

func (Codec) Name() string { return "mp3" }

func (Codec) IsOurPath(path string) bool {
	return audio.MatchExtension(path, ".mp3")
}

func (Codec) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		seekable:   seekable,
		buf:        make([]byte, 8192),
	}, nil
}

// New returns a closed MP3 input decoder.
func New(opts ...audio.DecoderOption) audio.InputDecoder {
	return audio.NewDecoder(Codec{}, opts...)
}
