package core

import "math"

// Clamp32 limits value to the inclusive range [min, max]. NaN maps to min.
func Clamp32(value, min, max float32) float32 {
	if min > max {
		min, max = max, min
	}

	if !(value >= min) {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// IsFinite32 reports whether x is neither NaN nor infinite.
func IsFinite32(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// FlushDenormals32 converts values in the float32 subnormal range to exact
// zero. Go cannot set the FTZ/DAZ flags, so recursive filter and feedback
// state is flushed explicitly.
func FlushDenormals32(x float32) float32 {
	const epsilon = 1.1754944e-38
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}
