// SPDX-License-Identifier: EPL-2.0

package dsp

import "errors"

var (
	// ErrUnknownParam indicates a parameter name the effect does not expose
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrParamRange indicates a parameter value outside its declared range
	ErrParamRange = errors.New("parameter out of range")

	// ErrInstantiate indicates an effect that cannot run in the requested format
	ErrInstantiate = errors.New("effect rejected format")
)
