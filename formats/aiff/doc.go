// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
// Integer PCM at 8, 16, 24 and 32 bits is supported, with any channel count
// and sample rate.
//
//	dec := aiff.New()
//	defer dec.Close()
//	if err := dec.Open("audio.aiff", &info, abort); err != nil {
//	    // Handle error
//	}
//
// Seeking restarts the decoder on the same file and skips forward to the
// requested frame.
package aiff
