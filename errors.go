// SPDX-License-Identifier: EPL-2.0

package audhost

import "errors"

// ErrSink indicates a sink that refused a chunk.
var ErrSink = errors.New("sink failure")
