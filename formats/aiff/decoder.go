// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/utils"
)

// ID identifies the AIFF decoder capability.
var ID = uuid.MustParse("6f1d2c3e-8a4b-4c5d-9e0f-1a2b3c4d5e02")

const discardBlock = 4096

// aiffReader is an interface for aiff.Decoder to allow testing
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source wraps go-audio aiff.Decoder to implement audio.Source
type source struct {
	dec        aiffReader
	reopen     func() (aiffReader, error)
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) Frames() int64   { return s.frames }
func (s *source) CanSeek() bool   { return s.reopen != nil }

func (s *source) read(n int) (int, error) {
	if s.intBuf == nil || cap(s.intBuf.Data) < n {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, n),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:n]
	}
	return s.dec.PCMBuffer(s.intBuf)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.read(len(dst))
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	// go-audio uses int format, we need to normalize based on bit depth
	for i := range n {
		dst[i] = utils.IntToFloat32(s.intBuf.Data[i], s.bitDepth)
	}

	// If we got fewer samples than requested and no error, we're at EOF
	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// SeekFrame restarts the decoder on the same data and skips ahead; go-audio's
// AIFF decoder cannot reposition inside the sound data chunk.
func (s *source) SeekFrame(frame int64) error {
	dec, err := s.reopen()
	if err != nil {
		return err
	}
	s.dec = dec
	s.intBuf = nil

	remaining := frame * int64(s.channels)
	for remaining > 0 {
		n, err := s.read(int(min(remaining, discardBlock)))
		remaining -= int64(n)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("skipping to frame %d: %w", frame, err)
		}
		if n == 0 || err != nil {
			break
		}
	}
	return nil
}

// Codec decodes AIFF files through go-audio/aiff.
type Codec struct{}

func (Codec) Name() string { return "aiff" }

func (Codec) IsOurPath(path string) bool {
	return audio.MatchExtension(path, ".aiff", ".aif")
}

func (Codec) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// If not a ReadSeeker, we need to read all data into memory
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}

	// Read file info
	dec.ReadInfo()

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	reopen := func() (aiffReader, error) {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		d := aiff.NewDecoder(rs)
		if !d.IsValidFile() {
			return nil, ErrNotAiffFile
		}
		d.ReadInfo()
		return d, nil
	}

	return &source{
		dec:        dec,
		reopen:     reopen,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		frames:     int64(dec.NumSampleFrames),
	}, nil
}

// New returns a closed AIFF input decoder.
func New(opts ...audio.DecoderOption) audio.InputDecoder {
	return audio.NewDecoder(Codec{}, opts...)
}
