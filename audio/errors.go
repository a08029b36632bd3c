// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrNotFound indicates a missing resource or an unregistered capability.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported indicates that no registered decoder accepts a path.
	ErrUnsupported = errors.New("unsupported path")

	// ErrFormat indicates a stream header that cannot be parsed.
	ErrFormat = errors.New("malformed stream header")

	// ErrAborted indicates that cancellation was observed before meaningful work.
	ErrAborted = errors.New("aborted")

	// ErrStream indicates a fatal I/O failure in the middle of a stream.
	ErrStream = errors.New("stream failure")

	// ErrUnseekable indicates a seek request on a stream that cannot seek.
	ErrUnseekable = errors.New("stream is not seekable")

	// ErrNotOpen indicates decode or seek on a closed decoder.
	ErrNotOpen = errors.New("decoder is not open")

	ErrChunkLayout    = errors.New("sample count must be a multiple of channels")
	ErrFormatMismatch = errors.New("chunk formats differ")
)

// DecodeError records the decoder operation and the path that caused it.
// It unwraps to one of the taxonomy errors above and to the underlying cause.
type DecodeError struct {
	Op   string
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind returns the taxonomy error err belongs to, or nil when err does not
// wrap any of them.
func Kind(err error) error {
	for _, kind := range []error{
		ErrAborted, ErrUnsupported, ErrNotFound, ErrFormat,
		ErrUnseekable, ErrStream, ErrNotOpen,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
