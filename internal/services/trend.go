package services

import "math"

// Trend returns the signed percentage change between the current and
// prior period totals, rounded to the nearest whole percent. A zero
// prior baseline always yields 0 rather than an infinite increase.
func Trend(current, prior int) int {
	if prior <= 0 {
		return 0
	}
	return int(math.Round(float64(current-prior) / float64(prior) * 100))
}
