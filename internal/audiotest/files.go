// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"errors"
	"io/fs"
	"sync/atomic"
	"testing/fstest"
)

// ErrDiskGone is what FlakyFS files return once reads start failing.
var ErrDiskGone = errors.New("disk gone")

// FlakyFS serves files from an in-memory map. After Break is called, reads at
// or beyond Offset fail with ErrDiskGone, while reads below it keep working so
// headers can still be parsed.
type FlakyFS struct {
	Files  fstest.MapFS
	Offset int64

	broken atomic.Bool
}

// Break makes subsequent reads past Offset fail.
func (f *FlakyFS) Break() { f.broken.Store(true) }

// Open implements fs.FS. The returned file also implements io.Seeker.
func (f *FlakyFS) Open(name string) (fs.File, error) {
	mf, ok := f.Files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	st, err := f.Files.Stat(name)
	if err != nil {
		return nil, err
	}
	return &flakyFile{r: bytes.NewReader(mf.Data), fs: f, info: st}, nil
}

// flakyFile exposes only Read and Seek so every read passes the failure check.
type flakyFile struct {
	r    *bytes.Reader
	fs   *FlakyFS
	info fs.FileInfo
}

func (f *flakyFile) Read(p []byte) (int, error) {
	if f.fs.broken.Load() && f.r.Size()-int64(f.r.Len()) >= f.fs.Offset {
		return 0, ErrDiskGone
	}
	return f.r.Read(p)
}

func (f *flakyFile) Seek(offset int64, whence int) (int64, error) {
	return f.r.Seek(offset, whence)
}

func (f *flakyFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *flakyFile) Close() error               { return nil }
