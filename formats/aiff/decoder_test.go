// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/fstest"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/internal/audiotest"
)

// createAIFFFile builds an in-memory 16-bit big-endian AIFF.
func createAIFFFile(t testing.TB, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	be := binary.BigEndian
	dataSize := len(samples) * 2
	rate := goaudio.IntToIEEEFloat(sampleRate)

	var buf bytes.Buffer
	buf.WriteString("FORM")
	fields := []any{
		uint32(4 + 8 + 18 + 8 + 8 + dataSize), [4]byte{'A', 'I', 'F', 'F'},
		[4]byte{'C', 'O', 'M', 'M'}, uint32(18),
		int16(channels), uint32(len(samples) / channels), int16(16), rate,
		[4]byte{'S', 'S', 'N', 'D'}, uint32(8 + dataSize), uint32(0), uint32(0),
		samples,
	}
	for _, f := range fields {
		if err := binary.Write(&buf, be, f); err != nil {
			t.Fatalf("building AIFF fixture: %v", err)
		}
	}
	return buf.Bytes()
}

// mockAiffReader simulates the aiff.Decoder for testing
type mockAiffReader struct {
	sampleRate   int
	channels     int
	samples      []int
	offset       int
	returnErrors bool
}

func (m *mockAiffReader) Format() *goaudio.Format {
	return &goaudio.Format{
		SampleRate:  m.sampleRate,
		NumChannels: m.channels,
	}
}

func (m *mockAiffReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}

	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := min(len(buf.Data), len(m.samples)-m.offset)
	copy(buf.Data, m.samples[m.offset:m.offset+samplesToRead])
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead, io.EOF
	}

	return samplesToRead, nil
}

func newMockSource(channels, bitDepth int, samples []int) (*source, *mockAiffReader) {
	reader := &mockAiffReader{sampleRate: 44100, channels: channels, samples: samples}
	return &source{
		dec:        reader,
		sampleRate: 44100,
		channels:   channels,
		bitDepth:   bitDepth,
		frames:     int64(len(samples) / channels),
	}, reader
}

func TestCodec_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: []byte{}},
		{name: "text", data: []byte("This is not AIFF data")},
		{name: "wav header", data: append([]byte("RIFF\x24\x00\x00\x00WAVE"), make([]byte, 32)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Codec{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error for invalid data")
			}
		})
	}
}

func TestCodec_IsOurPath(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"a.aiff": true,
		"a.AIF":  true,
		"a.aifc": false,
		"a.wav":  false,
	}
	for path, want := range tests {
		if got := (Codec{}).IsOurPath(path); got != want {
			t.Errorf("IsOurPath(%q) = %v, want %v", path, got, want)
		}
	}
	if (Codec{}).Name() != "aiff" {
		t.Errorf("Name() = %q", Codec{}.Name())
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src, _ := newMockSource(2, 16, make([]int, 100))

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.Frames() != 50 {
		t.Errorf("Frames() = %d, want 50", src.Frames())
	}
	if src.CanSeek() {
		t.Error("source without reopen reports CanSeek")
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	// Create test samples (16-bit range: -32768 to 32767)
	testSamples := []int{0, 16384, -16384, 32767, -32768}
	src, _ := newMockSource(1, 16, testSamples)

	dst := make([]float32, len(testSamples))
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v, want nil or EOF", err)
	}
	if n != len(testSamples) {
		t.Errorf("ReadSamples() n = %d, want %d", n, len(testSamples))
	}

	expected := []float32{0.0, 0.5, -0.5, 0.999969482, -1.0}
	for i := range n {
		if dst[i] < expected[i]-0.001 || dst[i] > expected[i]+0.001 {
			t.Errorf("ReadSamples() dst[%d] = %f, want ~%f", i, dst[i], expected[i])
		}
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, _ := newMockSource(2, 16, make([]int, 100))
	n, err := src.ReadSamples(make([]float32, 0))
	if err != nil || n != 0 {
		t.Errorf("ReadSamples() = %d, %v; want 0, nil", n, err)
	}
}

func TestSource_ReadSamples_PartialRead(t *testing.T) {
	t.Parallel()

	src, _ := newMockSource(1, 16, []int{100, 200})

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples() = %d, %v; want 2, EOF", n, err)
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() after end = %d, %v; want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src, reader := newMockSource(1, 16, []int{1, 2, 3})
	reader.returnErrors = true

	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		value    int
		want     float32
	}{
		{"8-bit signed", 8, -64, -0.5},
		{"16-bit", 16, 16384, 0.5},
		{"24-bit", 24, 4194304, 0.5},
		{"32-bit", 32, -1073741824, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, _ := newMockSource(1, tt.bitDepth, []int{tt.value})
			dst := make([]float32, 1)
			if _, err := src.ReadSamples(dst); err != nil && err != io.EOF {
				t.Fatal(err)
			}
			if dst[0] != tt.want {
				t.Errorf("dst[0] = %v, want %v", dst[0], tt.want)
			}
		})
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	samples := make([]int, 40)
	for i := range samples {
		samples[i] = i * 1000
	}
	src, _ := newMockSource(2, 16, samples)
	reopened := 0
	src.reopen = func() (aiffReader, error) {
		reopened++
		return &mockAiffReader{sampleRate: 44100, channels: 2, samples: samples}, nil
	}

	if !src.CanSeek() {
		t.Fatal("CanSeek() = false")
	}
	if err := src.SeekFrame(5); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	if reopened != 1 {
		t.Errorf("reopened %d times, want 1", reopened)
	}

	dst := make([]float32, 2)
	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatal(err)
	}
	if want := float32(10000) / 32768; dst[0] != want {
		t.Errorf("first sample after seek = %v, want %v", dst[0], want)
	}
}

func TestSource_SeekFrameReopenFails(t *testing.T) {
	t.Parallel()

	src, _ := newMockSource(1, 16, []int{1})
	src.reopen = func() (aiffReader, error) { return nil, ErrNotAiffFile }

	if err := src.SeekFrame(0); !errors.Is(err, ErrNotAiffFile) {
		t.Errorf("SeekFrame() error = %v, want ErrNotAiffFile", err)
	}
}

func TestSource_SeekFrameReadFails(t *testing.T) {
	t.Parallel()

	src, _ := newMockSource(1, 16, make([]int, 100))
	src.reopen = func() (aiffReader, error) {
		return &mockAiffReader{sampleRate: 44100, channels: 1, returnErrors: true}, nil
	}

	if err := src.SeekFrame(50); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("SeekFrame() error = %v, want the read failure", err)
	}
}

func TestDecoder_OpenDecodeSeek(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 8000)
	for i := range samples {
		samples[i] = int16(i)
	}
	files := fstest.MapFS{"ramp.aiff": {Data: createAIFFFile(t, 8000, 1, samples)}}
	dec := New(audio.WithFiles(files), audio.WithLogger(audiotest.Quiet()))
	defer dec.Close()

	var info audio.FileInfo
	if err := dec.Open("ramp.aiff", &info, nil); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if info.Stream.SampleRate != 8000 || info.Stream.Channels != 1 || info.Stream.Length != 1 {
		t.Errorf("stream = %+v", info.Stream)
	}

	if err := dec.Seek(0.5, nil); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	var c audio.Chunk
	if err := dec.Decode(&c, 1, nil); err != nil || c.Frames != 1 {
		t.Fatalf("Decode() after seek = %d frames, %v", c.Frames, err)
	}
	if want := float32(4000) / 32768; c.Samples[0] != want {
		t.Errorf("sample after seek = %v, want %v", c.Samples[0], want)
	}
}

func TestDecoder_SeekIOFailure(t *testing.T) {
	t.Parallel()

	files := &audiotest.FlakyFS{
		Files:  fstest.MapFS{"x.aiff": {Data: createAIFFFile(t, 8000, 1, make([]int16, 2*8000))}},
		Offset: 256,
	}
	dec := New(audio.WithFiles(files), audio.WithLogger(audiotest.Quiet()))
	defer dec.Close()

	if err := dec.Open("x.aiff", nil, nil); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	files.Break()

	err := dec.Seek(1.0, nil)
	if !errors.Is(err, audio.ErrStream) || !errors.Is(err, audiotest.ErrDiskGone) {
		t.Fatalf("Seek() error = %v, want ErrStream wrapping the I/O failure", err)
	}
	var c audio.Chunk
	if err := dec.Decode(&c, 16, nil); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Decode() after failed seek = %v, want ErrNotOpen", err)
	}
}

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrNotAiffFile, "not an AIFF file"},
		{ErrUnsupportedBitDepth, "unsupported AIFF bit depth"},
		{ErrUnsupportedAiffLayout, "unsupported AIFF layout"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	dec := New()
	if dec.Name() != "aiff" || !dec.IsOurPath("x.aif") {
		t.Errorf("New() = %s", dec.Name())
	}
	if err := dec.Close(); err != nil {
		t.Errorf("Close() on fresh decoder = %v", err)
	}

	var _ audio.Seeker = (*source)(nil)
	var _ audio.Lengther = (*source)(nil)
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 1<<16)
	src, reader := newMockSource(2, 16, samples)
	dst := make([]float32, 4096)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if reader.offset >= len(samples) {
			reader.offset = 0
		}
		_, _ = src.ReadSamples(dst)
	}
}
