// SPDX-License-Identifier: EPL-2.0

// Package audio provides the primitives shared by every component of the
// host: sample chunks, cancellation, stream info and tags, the error
// taxonomy, the decoder capability and a generic decoder state machine.
//
// # Chunks
//
// A Chunk carries interleaved float32 samples in [-1,1] together with the
// sample rate and channel count they belong to:
//
//	c := audio.NewChunk(1024, 2, 44100)
//	c.Scale(0.5)
//	fmt.Println(c.Duration(), c.Peak())
//
// len(c.Samples) == c.Frames*c.Channels always holds. Chunks are reused
// between calls; Resize keeps the backing storage when it is large enough.
//
// # Decoders
//
// InputDecoder is the capability every format implements. Decoder is a
// ready-made implementation that drives any Codec:
//
//	dec := audio.NewDecoder(wav.Codec{})
//	defer dec.Close()
//
//	var info audio.FileInfo
//	if err := dec.Open("song.wav", &info, abort); err != nil {
//	    return err
//	}
//
//	var c audio.Chunk
//	for {
//	    if err := dec.Decode(&c, 1024, abort); err != nil {
//	        return err
//	    }
//	    if c.Empty() {
//	        break // end of stream
//	    }
//	    // use c
//	}
//
// Seek clamps its target into [0, length] instead of failing, and Close may be
// called any number of times.
//
// # Cancellation
//
// An AbortToken is a set-once flag checked at I/O boundaries. A request that
// observes it stops early; Open and Seek report ErrAborted while Decode
// returns an empty chunk. AbortOnDone ties a token to a context.
//
// # Errors
//
// Decoder failures are returned as *DecodeError values that unwrap to one of
// ErrNotFound, ErrUnsupported, ErrFormat, ErrAborted, ErrStream,
// ErrUnseekable or ErrNotOpen. Kind recovers the category:
//
//	switch audio.Kind(err) {
//	case audio.ErrAborted:
//	    // user stopped playback
//	case audio.ErrNotFound:
//	    // skip the track
//	}
//
// # Resampling
//
// Resampler converts pushed chunks to a target rate with cubic interpolation
// and a light low-pass filter when downsampling. Call Flush at the end of a
// stream to drain the interpolation window.
package audio
