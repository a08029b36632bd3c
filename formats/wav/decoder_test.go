// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"testing/fstest"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/internal/audiotest"
	"github.com/pion/logging"
)

// createWAVFile builds an in-memory 16-bit PCM WAV.
func createWAVFile(t testing.TB, sampleRate, channels int, samples []int16) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := WriteWAV16(&buf, sampleRate, channels, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	return buf.Bytes()
}

// mockPCMReader simulates the wav.Decoder for testing
type mockPCMReader struct {
	samples []int
	offset  int
	fail    error
}

func (m *mockPCMReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n
	return n, nil
}

func TestCodec_Name(t *testing.T) {
	t.Parallel()

	c := Codec{}
	if c.Name() != "wav" {
		t.Errorf("Name() = %q, want wav", c.Name())
	}

	tests := []struct {
		path string
		want bool
	}{
		{"x.wav", true},
		{"X.WAV", true},
		{"x.wave", true},
		{"x.ape", false},
		{"wav", false},
	}
	for _, tt := range tests {
		if got := c.IsOurPath(tt.path); got != tt.want {
			t.Errorf("IsOurPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCodec_DecodeValidFile(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768}
	src, err := Codec{}.Decode(bytes.NewReader(createWAVFile(t, 8000, 1, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Fatalf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}
	if l, ok := src.(audio.Lengther); !ok || l.Frames() != 5 {
		t.Errorf("Frames() = %v, want 5", l)
	}

	buf := make([]float32, 16)
	n, err := src.ReadSamples(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(samples) {
		t.Fatalf("ReadSamples() = %d samples, want %d", n, len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768
		if math.Abs(float64(buf[i]-want)) > 1e-6 {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want)
		}
	}
}

func TestCodec_DecodeStereo(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200}
	src, err := Codec{}.Decode(bytes.NewReader(createWAVFile(t, 44100, 2, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if l := src.(audio.Lengther).Frames(); l != 2 {
		t.Errorf("Frames() = %d, want 2", l)
	}
}

func TestCodec_DecodeInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "text", data: []byte("This is not WAV data at all, just some text")},
		{name: "wrong form type", data: append([]byte("RIFF\x24\x00\x00\x00AIFF"), make([]byte, 32)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Codec{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestCodec_DecodeNonSeekableReader(t *testing.T) {
	t.Parallel()

	data := createWAVFile(t, 16000, 1, []int16{1, 2, 3, 4})
	// io.MultiReader hides the Seek method
	src, err := Codec{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if sk, ok := src.(audio.Seeker); !ok || !sk.CanSeek() {
		t.Error("buffered source should still seek")
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		in       []int
		want     []float32
	}{
		{name: "16-bit", bitDepth: 16, in: []int{0, 16384, -32768}, want: []float32{0, 0.5, -1}},
		{name: "8-bit unsigned", bitDepth: 8, in: []int{128, 192, 0}, want: []float32{0, 0.5, -1}},
		{name: "24-bit", bitDepth: 24, in: []int{1 << 22, -(1 << 23)}, want: []float32{0.5, -1}},
		{name: "32-bit", bitDepth: 32, in: []int{1 << 30}, want: []float32{0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &source{dec: &mockPCMReader{samples: tt.in}, channels: 1, bitDepth: tt.bitDepth}
			buf := make([]float32, 8)
			n, err := s.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != len(tt.want) {
				t.Fatalf("ReadSamples() = %d, want %d", n, len(tt.want))
			}
			for i, w := range tt.want {
				if buf[i] != w {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
				}
			}

			if n, err := s.ReadSamples(buf); n != 0 || !errors.Is(err, io.EOF) {
				t.Errorf("ReadSamples() at end = %d, %v; want 0, EOF", n, err)
			}
		})
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockPCMReader{samples: []int{1}}, channels: 1, bitDepth: 16}
	if n, err := s.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	s := &source{dec: &mockPCMReader{fail: io.ErrUnexpectedEOF}, channels: 1, bitDepth: 16}
	if _, err := s.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	data := make([]int, 200)
	for i := range data {
		data[i] = i * 100
	}
	reader := &mockPCMReader{samples: data}
	s := &source{dec: reader, channels: 2, bitDepth: 16, frames: 100}
	s.rewind = func() error {
		reader.offset = 0
		return nil
	}

	buf := make([]float32, 4)
	if _, err := s.ReadSamples(buf); err != nil {
		t.Fatal(err)
	}

	if err := s.SeekFrame(10); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	if reader.offset != 20 {
		t.Fatalf("offset after seek = %d, want 20", reader.offset)
	}
	if _, err := s.ReadSamples(buf); err != nil {
		t.Fatal(err)
	}
	if want := float32(2000) / 32768; buf[0] != want {
		t.Errorf("first sample after seek = %v, want %v", buf[0], want)
	}
}

func TestDecoder_OpenAndDecode(t *testing.T) {
	t.Parallel()

	const frames = 3000
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(i % 1500)
	}
	files := fstest.MapFS{"tone.wav": {Data: createWAVFile(t, 8000, 2, samples)}}

	quiet := logging.NewDefaultLoggerFactory()
	quiet.DefaultLogLevel = logging.LogLevelDisabled
	dec := New(audio.WithFiles(files), audio.WithLogger(quiet))
	defer dec.Close()

	var info audio.FileInfo
	if err := dec.Open("tone.wav", &info, nil); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if info.Stream.SampleRate != 8000 || info.Stream.Channels != 2 {
		t.Errorf("stream = %+v", info.Stream)
	}
	if math.Abs(info.Stream.Length-0.375) > 1e-9 {
		t.Errorf("Length = %v, want 0.375", info.Stream.Length)
	}
	if info.Stream.Bitrate != 256 {
		t.Errorf("Bitrate = %d, want 256", info.Stream.Bitrate)
	}

	var c audio.Chunk
	total := 0
	for {
		if err := dec.Decode(&c, 1024, nil); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if c.Empty() {
			break
		}
		total += c.Frames
	}
	if total != frames {
		t.Errorf("decoded %d frames, want %d", total, frames)
	}

	if err := dec.Seek(0.25, nil); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if err := dec.Decode(&c, 1, nil); err != nil || c.Frames != 1 {
		t.Fatalf("Decode() after seek = %d frames, %v", c.Frames, err)
	}
	if want := float32(4000%1500) / 32768; c.Samples[0] != want {
		t.Errorf("sample after seek = %v, want %v", c.Samples[0], want)
	}
}

func TestDecoder_OpenNotWav(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{"fake.wav": {Data: []byte("definitely not a wav file")}}
	dec := New(audio.WithFiles(files))

	err := dec.Open("fake.wav", nil, nil)
	if !errors.Is(err, audio.ErrFormat) || !errors.Is(err, ErrNotWavFile) {
		t.Errorf("Open() error = %v, want ErrFormat and ErrNotWavFile", err)
	}
}

func TestDecoder_SeekIOFailure(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 2*8000)
	files := &audiotest.FlakyFS{
		Files:  fstest.MapFS{"x.wav": {Data: createWAVFile(t, 8000, 1, samples)}},
		Offset: 256,
	}
	dec := New(audio.WithFiles(files), audio.WithLogger(audiotest.Quiet()))
	defer dec.Close()

	if err := dec.Open("x.wav", nil, nil); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	files.Break()

	err := dec.Seek(1.0, nil)
	if !errors.Is(err, audio.ErrStream) || !errors.Is(err, audiotest.ErrDiskGone) {
		t.Fatalf("Seek() error = %v, want ErrStream wrapping the I/O failure", err)
	}
	if dec.CanSeek() {
		t.Error("decoder still open after a failed seek")
	}
	var c audio.Chunk
	if err := dec.Decode(&c, 16, nil); !errors.Is(err, audio.ErrNotOpen) {
		t.Errorf("Decode() after failed seek = %v, want ErrNotOpen", err)
	}
}

func TestSource_SeekFrameReadFails(t *testing.T) {
	t.Parallel()

	reader := &mockPCMReader{samples: make([]int, 100)}
	s := &source{dec: reader, channels: 1, bitDepth: 16, frames: 100}
	s.rewind = func() error {
		reader.fail = io.ErrUnexpectedEOF
		return nil
	}

	if err := s.SeekFrame(50); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("SeekFrame() error = %v, want the read failure", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	data := make([]int, 1<<16)
	reader := &mockPCMReader{samples: data}
	s := &source{dec: reader, channels: 2, bitDepth: 16}
	buf := make([]float32, 4096)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if reader.offset >= len(data) {
			reader.offset = 0
		}
		_, _ = s.ReadSamples(buf)
	}
}
