// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Output Format
//
// MP3 decoder output:
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels: 2 (stereo, go-mp3 duplicates mono streams)
//   - Sample rate: Depends on the MP3 file (typically 44.1kHz or 48kHz)
//
// # Seeking
//
// go-mp3 can only seek, and only knows the stream length, when the input
// implements io.Seeker. Files opened from disk qualify; a pipe or network
// stream decodes fine but reports CanSeek() == false and an unknown length.
package mp3
