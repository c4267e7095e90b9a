package math

import (
	"math"
	"strconv"
)

// Format formats a float with two decimals, non-finite values by name.
func Format(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// ToFloat converts the integers into floats.
func ToFloat(ii []int) []float64 {
	if ii == nil {
		return nil
	}
	ff := make([]float64, len(ii))
	for f, i := range ii {
		ff[f] = float64(i)
	}
	return ff
}
