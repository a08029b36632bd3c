// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrNotWavFile indicates the stream does not start with a RIFF/WAVE header
	ErrNotWavFile = errors.New("not a WAV file")

	// ErrUnsupportedWavLayout indicates a compressed or otherwise non-PCM encoding
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")

	// ErrUnsupportedBitDepth indicates a sample size other than 8, 16, 24 or 32 bits
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")

	// ErrUnsupportedWavChunks indicates a file without a usable data chunk
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")

	// ErrSinkFormat indicates a chunk whose format differs from the one the
	// sink started writing with
	ErrSinkFormat = errors.New("chunk format differs from WAV output format")
)
