package utils

import "math"

// CeilDiv - Returns the quotient of a and b rounded up towards positive infinity.
// Both a and b are expected to be positive.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// Pow4Capped - Returns 4 to the power of k, capped at the maximum int64 value.
// The number of distinct k-mers of length k can never exceed 4^k, but for any k above 31 the
// theoretical count no longer fits an int64 and the cap is returned instead.
func Pow4Capped(k int) int64 {
	if k > 31 {
		return math.MaxInt64
	}

	return int64(1) << (2 * k)
}

// MinInt64 - Returns the smaller of a and b
func MinInt64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
