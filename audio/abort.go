// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"sync/atomic"
)

// AbortToken is a set-once cancellation flag shared by every call made on
// behalf of one playback request. Once set it stays set; use a fresh token for
// each request.
//
// A nil *AbortToken is valid and never aborts.
type AbortToken struct {
	aborted atomic.Bool
}

// NewAbortToken returns a token that has not been aborted.
func NewAbortToken() *AbortToken {
	return &AbortToken{}
}

// Abort sets the flag. Calling it more than once is harmless.
func (t *AbortToken) Abort() {
	t.aborted.Store(true)
}

// Aborted reports whether Abort has been called.
func (t *AbortToken) Aborted() bool {
	return t != nil && t.aborted.Load()
}

// Check returns ErrAborted once the token has been set.
func (t *AbortToken) Check() error {
	if t.Aborted() {
		return ErrAborted
	}
	return nil
}

// AbortOnDone returns a token that is aborted when ctx is done. The returned
// stop function detaches the token from ctx; it reports whether it did so
// before ctx finished.
func AbortOnDone(ctx context.Context) (*AbortToken, func() bool) {
	t := NewAbortToken()
	if ctx.Err() != nil {
		t.Abort()
		return t, func() bool { return false }
	}
	stop := context.AfterFunc(ctx, t.Abort)
	return t, stop
}
