package common

import "math"

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the unit range.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// RoundInt rounds half away from zero and returns an int.
func RoundInt(v float64) int {
	return int(math.Round(v))
}
