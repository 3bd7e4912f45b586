package module

import "math"

// trunc32 splits v into integer and fractional parts, truncating toward
// zero, in 32-bit precision.
func trunc32(v float32) (intPart, fracPart float32) {
	i, f := math.Modf(float64(v))
	return float32(i), float32(f)
}
