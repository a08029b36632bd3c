// SPDX-License-Identifier: EPL-2.0

// Package service maps capability identifiers to factories.
//
// Decoders and effects are registered under a 128-bit identifier and a short
// name. The registry creates fresh instances on demand and resolves a decoder
// for a path by asking each registered decoder, in registration order,
// whether it claims the path.
//
// Registration is expected to finish before playback sessions start, but the
// registry serializes both registration and lookup, so racing them is safe.
package service
