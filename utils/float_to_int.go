// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM, clamping first.
func Float32ToInt16(x float32) int16 {
	return int16(Float32ToInt(x, 16))
}

// Float32ToInt converts a sample in [-1,1] to a signed integer of bitDepth
// bits. Unsupported depths are treated as 16-bit.
func Float32ToInt(x float32, bitDepth int) int {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Scale by the positive max so +1 does not overflow.
	return int(float64(x) * float64(FullScale(bitDepth)-1))
}

// IntToFloat32 normalizes a signed PCM value of bitDepth bits to [-1,1).
func IntToFloat32(v int, bitDepth int) float32 {
	return float32(float64(v) / float64(FullScale(bitDepth)))
}

// FullScale returns 2^(bitDepth-1), the magnitude of the most negative value
// of a signed sample of that depth.
func FullScale(bitDepth int) int64 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}
