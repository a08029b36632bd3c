// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio decoding.
//
// This package uses github.com/jfreymuth/oggvorbis, a pure Go decoder.
// Vorbis comments are copied into the caller's audio.Metadata, keeping every
// value of repeated names such as ARTIST.
//
//	dec := vorbis.New()
//	defer dec.Close()
//
//	var info audio.FileInfo
//	if err := dec.Open("audio.ogg", &info, abort); err != nil {
//	    // Handle error
//	}
//	fmt.Println(info.Meta.Values("artist"))
//
// Seeking and the stream length need a seekable input, as with files opened
// from disk.
package vorbis
