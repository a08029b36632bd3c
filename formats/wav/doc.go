// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Decoding goes through github.com/go-audio/wav and supports integer PCM at
// 8, 16, 24 and 32 bits with any channel count and sample rate. RIFF INFO
// tags (title, artist, album, ...) are reported under their Vorbis comment
// names.
//
// # Decoding WAV Files
//
// New returns an audio.InputDecoder for WAV paths:
//
//	dec := wav.New()
//	defer dec.Close()
//
//	var info audio.FileInfo
//	if err := dec.Open("audio.wav", &info, abort); err != nil {
//	    // Handle error
//	}
//
// The decoder is seekable; a seek rewinds to the start of the sample data and
// skips forward.
//
// # Encoding WAV Files
//
// Sink writes processed chunks to any io.WriteSeeker with the go-audio
// encoder:
//
//	f, _ := os.Create("out.wav")
//	sink, _ := wav.NewSink(f, 16)
//	defer sink.Close()
//	sink.Write(chunk)
//
// WriteWAV16 writes a complete 16-bit file to a plain io.Writer in one call,
// which suits in-memory fixtures.
package wav
