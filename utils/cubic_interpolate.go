// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates a Catmull-Rom spline through four consecutive
// samples. x is the fractional position between y1 and y2 (0 <= x <= 1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	// Horner form keeps x=0 and x=1 exact for integer-valued inputs.
	return ((a0*x+a1)*x+a2)*x + y1
}

// CubicInterpolateFrame appends to dst the interleaved frame at x between
// frames f1 and f2, with f0 and f3 as the outer neighbours. All four frames
// hold one sample per channel.
func CubicInterpolateFrame(dst []float32, f0, f1, f2, f3 []float32, x float32) []float32 {
	for c := range f1 {
		dst = append(dst, CubicInterpolate(f0[c], f1[c], f2[c], f3[c], x))
	}
	return dst
}
