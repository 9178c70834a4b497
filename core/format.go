package core

import (
	"math"
	"strconv"
)

// byteUnits are the units FormatBytes can produce. Nothing past MB is defined.
var byteUnits = []string{"B", "KB", "MB"}

// FormatBytes converts a byte count into a human-readable string such as "1.5 KB".
// The value is rounded to at most 2 decimal places with trailing zeros dropped.
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	// Largest unit whose power of 1024 fits, i.e. floor(log1024(bytes)), clamped to MB.
	unit := 0
	for n := bytes / 1024; n > 0 && unit < len(byteUnits)-1; n /= 1024 {
		unit++
	}

	value := float64(bytes) / math.Pow(1024, float64(unit))
	return trimFloat(value, 2) + " " + byteUnits[unit]
}

// formatPercent renders a percentage with at most 1 decimal place.
func formatPercent(pct float64) string {
	return trimFloat(pct, 1)
}

// trimFloat rounds v to the given number of decimals and drops trailing zeros.
func trimFloat(v float64, decimals int) string {
	scale := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', -1, 64)
}
