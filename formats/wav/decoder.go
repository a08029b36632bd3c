// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/utils"
)

// ID identifies the WAV decoder capability.
var ID = uuid.MustParse("6f1d2c3e-8a4b-4c5d-9e0f-1a2b3c4d5e01")

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	discardBlock = 4096
)

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	rewind     func() error
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	bitrate    int
	tags       [][2]string
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) Frames() int64   { return s.frames }
func (s *source) Bitrate() int    { return s.bitrate }
func (s *source) CanSeek() bool   { return s.rewind != nil }

func (s *source) ReadTags(meta *audio.Metadata) {
	for _, t := range s.tags {
		meta.Add(t[0], t[1])
	}
}

func (s *source) read(n int) (int, error) {
	if s.intBuf == nil || cap(s.intBuf.Data) < n {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, n)}
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
			return 0, fmt.Errorf("%w", err)
		}
		return 0, io.EOF
	}

	// 8-bit WAV data is unsigned
	offset := 0
	if s.bitDepth == 8 {
		offset = 128
	}
	for i := range n {
		dst[i] = utils.IntToFloat32(s.intBuf.Data[i]-offset, s.bitDepth)
	}

	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w", err)
	}
	return n, err
}

// SeekFrame rewinds to the start of the PCM data and skips forward, since the
// data chunk reader only moves forward.
func (s *source) SeekFrame(frame int64) error {
	if err := s.rewind(); err != nil {
		return err
	}

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

// Codec decodes PCM WAV files through go-audio/wav.
type Codec struct{}

func (Codec) Name() string { return "wav" }

func (Codec) IsOurPath(path string) bool {
	return audio.MatchExtension(path, ".wav", ".wave")
}

func (Codec) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}
	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	// Metadata lives in LIST chunks that may follow the data chunk, so read
	// it first and rewind to the samples afterwards.
	dec.ReadMetadata()
	tags := collectTags(dec.Metadata)

	rewind := func() error {
		if err := dec.Rewind(); err != nil {
			return fmt.Errorf("%w", err)
		}
		if dec.PCMChunk == nil {
			if err := dec.FwdToPCM(); err != nil {
				return fmt.Errorf("%w", err)
			}
		}
		// FwdToPCM reports header failures through Err only.
		if dec.PCMChunk == nil {
			if err := dec.Err(); err != nil {
				return fmt.Errorf("%w", err)
			}
			return ErrUnsupportedWavChunks
		}
		return nil
	}
	if err := rewind(); err != nil {
		if errors.Is(err, ErrUnsupportedWavChunks) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
	}

	channels := int(dec.NumChans)
	blockAlign := int64(channels * bitDepth / 8)
	var frames int64
	if blockAlign > 0 {
		frames = int64(dec.PCMSize) / blockAlign
	}

	return &source{
		dec:        dec,
		rewind:     rewind,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     frames,
		bitrate:    int(dec.AvgBytesPerSec) * 8 / 1000,
		tags:       tags,
	}, nil
}

// collectTags maps the RIFF INFO fields go-audio exposes onto the Vorbis
// comment names used across the host.
func collectTags(m *wav.Metadata) [][2]string {
	if m == nil {
		return nil
	}

	var tags [][2]string
	add := func(name, value string) {
		if value != "" {
			tags = append(tags, [2]string{name, value})
		}
	}
	add("TITLE", m.Title)
	add("ARTIST", m.Artist)
	add("ALBUM", m.Product)
	add("GENRE", m.Genre)
	add("DATE", m.CreationDate)
	add("TRACKNUMBER", m.TrackNbr)
	add("COMMENT", m.Comments)
	add("COPYRIGHT", m.Copyright)
	add("ENCODER", m.Software)
	return tags
}

// New returns a closed WAV input decoder.
func New(opts ...audio.DecoderOption) audio.InputDecoder {
	return audio.NewDecoder(Codec{}, opts...)
}
