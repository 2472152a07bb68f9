package utils

import (
	"strconv"
	"strings"
)

// FormatYen formats an amount in yen with thousands separators.
// Example: 12345 -> "¥12,345"
func FormatYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var parts []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{digits[start:i]}, parts...)
	}

	return sign + "¥" + strings.Join(parts, ",")
}
