// Package fixedpoint implements the 28.4 fixed-point arithmetic used for
// every projected coordinate in the viewer: the low 4 bits of a value carry
// fractional meters, so "one projected unit" is 1/16 of a meter.
//
// All intermediate multiplications are carried out in 64-bit; callers
// narrow to 32-bit only at the point a value becomes a screen pixel.
package fixedpoint

// Shift is the number of fractional bits (28.4 == 4 fractional bits).
const Shift = 4

// Scale is 1<<Shift, the number of fixed-point units per whole meter.
const Scale = 1 << Shift

// FromInt converts a whole-unit integer (e.g. meters) to 28.4 fixed-point.
func FromInt(v int64) int64 { return v << Shift }

// ToInt truncates a 28.4 fixed-point value down to whole units.
func ToInt(v int64) int64 { return v >> Shift }

// MulDiv computes a*b/c in 64-bit, the pattern used throughout the
// georeference and scale transforms to avoid intermediate overflow.
func MulDiv(a, b, c int64) int64 {
	return (a * b) / c
}

// Narrow checks that v fits in an int32 and returns the narrowed value.
// The original C narrows pixel coordinates to 32 bits without a check; this
// is the "checked narrowing" spec.md's Error Handling Design section calls
// for ("the final narrowing to 32-bit is checked").
func Narrow(v int64) (int32, bool) {
	n := int32(v)
	return n, int64(n) == v
}

// NarrowClamp narrows v to int32, clamping to the extremes on overflow
// instead of failing. Used on render/geometry paths where a clamped pixel
// coordinate is preferable to a hard error.
func NarrowClamp(v int64) int32 {
	const maxI32 = int64(1<<31 - 1)
	const minI32 = -int64(1 << 31)
	if v > maxI32 {
		return int32(maxI32)
	}
	if v < minI32 {
		return int32(minI32)
	}
	return int32(v)
}
