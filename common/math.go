package common

import "math"

// WeightEpsilon is the threshold under which a blend weight counts as zero.
const WeightEpsilon = 0.001

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Approx reports whether a and b differ by at most eps.
func Approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
