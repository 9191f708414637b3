package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder is shown in place of zero or non-finite values
const Placeholder = "--"

// Cell returns the display text for a value
func Cell(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return Placeholder
	}
	if value == math.Trunc(value) && math.Abs(value) < math.MaxInt32 {
		return Format(int(value))
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// Format returns a compact form of i, using k for thousands over 10k and m for millions
func Format(i int) string {
	if i < 0 {
		// uint64 holds the magnitude of math.MinInt
		return "-" + formatMagnitude(uint64(-(i + 1))+1)
	}
	return formatMagnitude(uint64(i))
}

func formatMagnitude(u uint64) string {
	switch {
	case u >= 1000000:
		return trimZero(fmt.Sprintf("%.1f", float64(u)/1000000)) + "m"
	case u >= 10000:
		return trimZero(fmt.Sprintf("%.1f", float64(u)/1000)) + "k"
	}
	return strconv.FormatUint(u, 10)
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
