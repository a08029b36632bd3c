// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"

	"github.com/pion/logging"
)

// MaxDecodeFrames caps the frames a single Decode call produces. Larger
// requests are served in several calls.
const MaxDecodeFrames = 1 << 20

// maxEmptyReads bounds how many times in a row a source may return no data
// without io.EOF before the decoder treats the stream as finished.
const maxEmptyReads = 8

type decoderState int

const (
	stateClosed decoderState = iota
	stateOpen
	stateDecoding
	stateSeeking
)

func (s decoderState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateDecoding:
		return "decoding"
	case stateSeeking:
		return "seeking"
	}
	return "closed"
}

// Decoder implements InputDecoder for any Codec. It owns the state machine,
// the resource handle, cancellation checks and position bookkeeping, so codecs
// only have to turn bytes into samples.
type Decoder struct {
	codec Codec
	files fs.FS
	log   logging.LeveledLogger

	state decoderState
	path  string
	file  fs.File
	src   Source
	info  StreamInfo
	frame int64
	eof   bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithFiles sets the resource provider paths are opened from. The default is
// OSFiles.
func WithFiles(files fs.FS) DecoderOption {
	return func(d *Decoder) { d.files = files }
}

// WithLogger sets the logger factory; the decoder logs under the "decoder" scope.
func WithLogger(factory logging.LoggerFactory) DecoderOption {
	return func(d *Decoder) { d.log = factory.NewLogger("decoder") }
}

// NewDecoder returns a closed decoder for codec.
func NewDecoder(codec Codec, opts ...DecoderOption) *Decoder {
	d := &Decoder{codec: codec, files: OSFiles{}}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logging.NewDefaultLoggerFactory().NewLogger("decoder")
	}
	return d
}

// Name returns the codec name.
func (d *Decoder) Name() string { return d.codec.Name() }

// IsOurPath delegates to the codec.
func (d *Decoder) IsOurPath(path string) bool { return d.codec.IsOurPath(path) }

// Info returns the stream info of the open stream.
func (d *Decoder) Info() StreamInfo { return d.info }

// Open opens path. An already open stream is closed first.
func (d *Decoder) Open(path string, info *FileInfo, abort *AbortToken) error {
	if d.state != stateClosed {
		d.log.Debugf("%s: closing %s before reopening", d.codec.Name(), d.path)
		if err := d.Close(); err != nil {
			d.log.Warnf("%s: close %s: %v", d.codec.Name(), d.path, err)
		}
	}

	if abort.Aborted() {
		return &DecodeError{Op: "open", Path: path, Err: ErrAborted}
	}

	src, file, stats, err := d.openSource(path)
	if err != nil {
		return &DecodeError{Op: "open", Path: path, Err: err}
	}

	// Header parsing is the natural I/O boundary of open.
	if abort.Aborted() {
		closeSource(src, file)
		return &DecodeError{Op: "open", Path: path, Err: ErrAborted}
	}

	rate, channels := src.SampleRate(), src.Channels()
	if rate <= 0 || channels <= 0 {
		closeSource(src, file)
		return &DecodeError{Op: "open", Path: path,
			Err: fmt.Errorf("%w: %d channels at %d Hz", ErrFormat, channels, rate)}
	}

	d.info = StreamInfo{SampleRate: rate, Channels: channels}
	if l, ok := src.(Lengther); ok {
		if n := l.Frames(); n > 0 {
			d.info.Length = float64(n) / float64(rate)
		}
	}
	if b, ok := src.(Bitrater); ok {
		d.info.Bitrate = b.Bitrate()
	}

	if info != nil {
		info.Reset()
		info.Stream = d.info
		info.Stats = stats
		if t, ok := src.(Tagger); ok {
			t.ReadTags(&info.Meta)
		}
	}

	d.path = path
	d.src = src
	d.file = file
	d.frame = 0
	d.eof = false
	d.state = stateOpen

	d.log.Debugf("%s: opened %s (%d Hz, %d ch, %.2fs)",
		d.codec.Name(), path, rate, channels, d.info.Length)

	return nil
}

func (d *Decoder) openSource(path string) (Source, fs.File, FileStats, error) {
	if po, ok := d.codec.(PathOpener); ok {
		src, err := po.OpenPath(path)
		if err != nil {
			if Kind(err) != nil {
				return nil, nil, FileStats{}, err
			}
			return nil, nil, FileStats{}, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return src, nil, FileStats{}, nil
	}

	f, err := d.files.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, FileStats{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, nil, FileStats{}, fmt.Errorf("%w: %w", ErrStream, err)
	}

	var stats FileStats
	if st, err := f.Stat(); err == nil {
		stats = FileStats{Size: st.Size(), ModTime: st.ModTime()}
	}

	src, err := d.codec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, FileStats{}, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	return src, f, stats, nil
}

// Decode reads up to frames frames into dst. Requests are clamped to
// MaxDecodeFrames and to the advertised remaining length. An aborted token
// yields an empty chunk without touching the stream or the position.
func (d *Decoder) Decode(dst *Chunk, frames int, abort *AbortToken) error {
	switch d.state {
	case stateOpen, stateDecoding:
	default:
		return &DecodeError{Op: "decode", Path: d.path, Err: ErrNotOpen}
	}

	channels := d.info.Channels
	dst.Resize(0, channels, d.info.SampleRate)
	if abort.Aborted() || d.eof || frames <= 0 {
		return nil
	}

	frames = d.clampFrames(frames)

	d.state = stateDecoding
	dst.Resize(frames, channels, d.info.SampleRate)

	want := frames * channels
	got := 0
	empty := 0
	for got < want {
		n, err := d.src.ReadSamples(dst.Samples[got:want])
		got += n

		if errors.Is(err, io.EOF) {
			d.eof = true
			break
		}
		if err != nil {
			path := d.path
			d.log.Errorf("%s: decode %s: %v", d.codec.Name(), path, err)
			if cerr := d.Close(); cerr != nil {
				d.log.Warnf("%s: close %s: %v", d.codec.Name(), path, cerr)
			}
			dst.Reset()
			return &DecodeError{Op: "decode", Path: path, Err: fmt.Errorf("%w: %w", ErrStream, err)}
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				d.eof = true
				break
			}
			continue
		}
		empty = 0
	}

	produced := got / channels
	dst.Truncate(produced)
	d.frame += int64(produced)

	return nil
}

// clampFrames bounds a positive request so the chunk buffer stays allocatable.
// The advertised length only shrinks the buffer; a stream running past it is
// still read on the next call.
func (d *Decoder) clampFrames(frames int) int {
	frames = min(frames, MaxDecodeFrames)
	if remaining := d.info.TotalFrames() - d.frame; remaining > 0 && int64(frames) > remaining {
		frames = int(remaining)
	}
	if limit := math.MaxInt / d.info.Channels; frames > limit {
		frames = limit
	}
	return frames
}

// CanSeek reports whether the open stream supports Seek.
func (d *Decoder) CanSeek() bool {
	if d.state == stateClosed {
		return false
	}
	sk, ok := d.src.(Seeker)
	return ok && sk.CanSeek()
}

// Seek repositions the stream. Targets outside [0, length] are clamped
// rather than rejected.
func (d *Decoder) Seek(seconds float64, abort *AbortToken) error {
	if d.state == stateClosed {
		return &DecodeError{Op: "seek", Path: d.path, Err: ErrNotOpen}
	}
	sk, ok := d.src.(Seeker)
	if !ok || !sk.CanSeek() {
		return &DecodeError{Op: "seek", Path: d.path, Err: ErrUnseekable}
	}
	if abort.Aborted() {
		return &DecodeError{Op: "seek", Path: d.path, Err: ErrAborted}
	}

	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	if d.info.LengthKnown() && seconds > d.info.Length {
		seconds = d.info.Length
	}

	target := seconds * float64(d.info.SampleRate)
	if target > math.MaxInt64/2 {
		target = math.MaxInt64 / 2
	}
	frame := int64(target)
	if total := d.info.TotalFrames(); total > 0 && frame > total {
		frame = total
	}

	d.state = stateSeeking
	if err := sk.SeekFrame(frame); err != nil {
		path := d.path
		d.log.Errorf("%s: seek %s to frame %d: %v", d.codec.Name(), path, frame, err)
		if cerr := d.Close(); cerr != nil {
			d.log.Warnf("%s: close %s: %v", d.codec.Name(), path, cerr)
		}
		return &DecodeError{Op: "seek", Path: path, Err: fmt.Errorf("%w: %w", ErrStream, err)}
	}

	d.frame = frame
	d.eof = false
	d.state = stateDecoding

	return nil
}

// Position returns the cursor in seconds.
func (d *Decoder) Position() float64 {
	if d.info.SampleRate <= 0 {
		return 0
	}
	return float64(d.frame) / float64(d.info.SampleRate)
}

// Close releases the source and the resource handle. Closing a closed decoder
// is a no-op.
func (d *Decoder) Close() error {
	if d.state == stateClosed {
		return nil
	}
	err := closeSource(d.src, d.file)
	d.src = nil
	d.file = nil
	d.eof = false
	d.state = stateClosed
	return err
}

func closeSource(src Source, file io.Closer) error {
	var errs []error
	if src != nil {
		errs = append(errs, src.Close())
	}
	if file != nil {
		errs = append(errs, file.Close())
	}
	return errors.Join(errs...)
}
