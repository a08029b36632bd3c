// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"slices"
	"strings"
	"time"
)

// StreamInfo describes an opened stream.
type StreamInfo struct {
	SampleRate int
	Channels   int
	// Bitrate in kbps, 0 when unknown.
	Bitrate int
	// Length in seconds; 0 or negative means unknown (e.g. a live stream).
	Length float64
}

// LengthKnown reports whether the stream advertises a finite length.
func (i StreamInfo) LengthKnown() bool { return i.Length > 0 }

// TotalFrames returns the advertised length in frames, or 0 when unknown.
func (i StreamInfo) TotalFrames() int64 {
	if !i.LengthKnown() || i.SampleRate <= 0 {
		return 0
	}
	return int64(i.Length*float64(i.SampleRate) + 0.5)
}

// FileStats are filesystem facts about the opened resource.
type FileStats struct {
	Size    int64
	ModTime time.Time
}

// FileInfo is the record a decoder populates on Open.
type FileInfo struct {
	Stream StreamInfo
	Meta   Metadata
	Stats  FileStats
}

// Reset clears every field.
func (fi *FileInfo) Reset() {
	fi.Stream = StreamInfo{}
	fi.Meta.Reset()
	fi.Stats = FileStats{}
}

type tag struct {
	name   string
	values []string
}

// Metadata maps case-insensitive tag names to ordered value lists, so a track
// can carry several ARTIST entries. A tag with no values does not exist.
// The zero value is ready to use.
type Metadata struct {
	tags map[string]*tag
}

func metaKey(name string) string { return strings.ToLower(name) }

// Set replaces the values of name. Setting no values removes the tag.
func (m *Metadata) Set(name string, values ...string) {
	if len(values) == 0 {
		m.Remove(name)
		return
	}
	if m.tags == nil {
		m.tags = make(map[string]*tag)
	}
	m.tags[metaKey(name)] = &tag{name: name, values: slices.Clone(values)}
}

// Add appends value to the values of name.
func (m *Metadata) Add(name, value string) {
	if m.tags == nil {
		m.tags = make(map[string]*tag)
	}
	k := metaKey(name)
	if t, ok := m.tags[k]; ok {
		t.values = append(t.values, value)
		return
	}
	m.tags[k] = &tag{name: name, values: []string{value}}
}

// Get returns the value at index of name.
func (m *Metadata) Get(name string, index int) (string, bool) {
	t, ok := m.tags[metaKey(name)]
	if !ok || index < 0 || index >= len(t.values) {
		return "", false
	}
	return t.values[index], true
}

// First is Get(name, 0) without the ok flag.
func (m *Metadata) First(name string) string {
	v, _ := m.Get(name, 0)
	return v
}

// Values returns a copy of all values of name.
func (m *Metadata) Values(name string) []string {
	if t, ok := m.tags[metaKey(name)]; ok {
		return slices.Clone(t.values)
	}
	return nil
}

// Count returns the number of values stored for name.
func (m *Metadata) Count(name string) int {
	if t, ok := m.tags[metaKey(name)]; ok {
		return len(t.values)
	}
	return 0
}

// Remove deletes name.
func (m *Metadata) Remove(name string) {
	delete(m.tags, metaKey(name))
}

// Names returns the tag names, as first stored, sorted case-insensitively.
func (m *Metadata) Names() []string {
	names := make([]string, 0, len(m.tags))
	for _, t := range m.tags {
		names = append(names, t.name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(metaKey(a), metaKey(b))
	})
	return names
}

// Len returns the number of tags.
func (m *Metadata) Len() int { return len(m.tags) }

// Reset removes every tag.
func (m *Metadata) Reset() { clear(m.tags) }
