package utils

import (
	"math"
	"strconv"
)

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatMl formats a volume with at most one decimal and no trailing ".0"
func FormatMl(v float64) string {
	return strconv.FormatFloat(Round(v, 1), 'f', -1, 64)
}
