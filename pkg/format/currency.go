// Package format renders monthly amounts for people.
package format

import (
	"strconv"
	"strings"
)

// Currency returns a whole-dollar string with thousands separators (e.g., "-$1,234").
func Currency(amount int64) string {
	if amount < 0 {
		return "-$" + groupThousands(strconv.FormatInt(-amount, 10))
	}
	return "$" + groupThousands(strconv.FormatInt(amount, 10))
}

// Monthly appends the per-month suffix (e.g., "$1,213/mo").
func Monthly(amount int64) string {
	return Currency(amount) + "/mo"
}

// Percent renders a whole percentage (e.g., "31%").
func Percent(value int64) string {
	return strconv.FormatInt(value, 10) + "%"
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}

	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
