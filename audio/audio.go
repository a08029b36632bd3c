// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Source is the format-specific PCM producer a Codec hands back.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	// Close releases any resources.
	Close() error
}

// Seeker is implemented by sources that can reposition to a frame index.
type Seeker interface {
	CanSeek() bool
	SeekFrame(frame int64) error
}

// Lengther is implemented by sources that know their total length in frames.
// A value <= 0 means unknown.
type Lengther interface {
	Frames() int64
}

// Tagger is implemented by sources carrying tags.
type Tagger interface {
	ReadTags(meta *Metadata)
}

// Bitrater is implemented by sources that know their nominal bitrate in kbps.
type Bitrater interface {
	Bitrate() int
}

// Codec constructs a Source from an input reader.
type Codec interface {
	// Name identifies the codec in logs and configuration ("wav", "mp3", ...).
	Name() string
	// IsOurPath reports whether the codec claims path. It must not do I/O.
	IsOurPath(path string) bool
	Decode(r io.Reader) (Source, error)
}

// PathOpener is implemented by codecs whose sources are not backed by a
// resource, such as generators. The decoder calls OpenPath instead of opening
// the path through its resource provider, and never calls Decode on such a
// codec.
type PathOpener interface {
	OpenPath(path string) (Source, error)
}

// InputDecoder is the decoder capability. Instances move through
// Closed -> Open -> (Decoding <-> Seeking) -> Closed and may be reopened.
// An instance belongs to one playback session and is not safe for concurrent
// use.
type InputDecoder interface {
	Name() string
	// IsOurPath is a pure predicate, callable in any state.
	IsOurPath(path string) bool
	// Open opens path and populates info when it is not nil.
	Open(path string, info *FileInfo, abort *AbortToken) error
	// Decode overwrites dst with at most frames frames. An empty dst with a
	// nil error means end of stream.
	Decode(dst *Chunk, frames int, abort *AbortToken) error
	// Seek moves the cursor to seconds, clamped to the stream bounds.
	Seek(seconds float64, abort *AbortToken) error
	CanSeek() bool
	// Position returns the cursor in seconds.
	Position() float64
	// Close is idempotent.
	Close() error
}

// OSFiles is a resource provider backed by the host file system. Unlike
// os.DirFS it accepts absolute and relative OS paths as-is.
type OSFiles struct{}

// Open implements fs.FS.
func (OSFiles) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// MatchExtension reports whether path ends in one of exts, ignoring case.
// Extensions are given with their leading dot.
func MatchExtension(path string, exts ...string) bool {
	ext := filepath.Ext(path)
	if ext == "" {
		return false
	}
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
