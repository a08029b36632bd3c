// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"sync"

	"github.com/pion/logging"
)

// Quiet returns a logger factory that discards everything.
func Quiet() logging.LoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = logging.LogLevelDisabled
	return f
}

// LogBuffer collects log lines for assertions.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Capture returns a factory writing warnings and worse to buf.
func Capture(buf *LogBuffer) logging.LoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = logging.LogLevelWarn
	f.Writer = buf
	return f
}
