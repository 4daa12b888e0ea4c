package fare

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var priceCleaner = strings.NewReplacer(
	"€", "",
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	",", ".",
)

// ParsePrice converts a label such as "65 €" or "1 234,50 €" to an amount.
// The flag is false when the label does not hold a non-negative number; the
// amount is then zero, which the selector never picks.
func ParsePrice(label string) (decimal.Decimal, bool) {
	cleaned := priceCleaner.Replace(strings.TrimSpace(label))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, false
	}
	return amount, true
}

// ParseClock converts an "HH:MM" label to minutes since midnight.
// Malformed labels yield 0 (midnight) with the flag false.
func ParseClock(label string) (int, bool) {
	hh, mm, ok := strings.Cut(label, ":")
	if !ok || strings.Contains(mm, ":") {
		return 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// TimeDiffMinutes is the absolute difference between two clock labels in
// minutes of day. Times either side of midnight are far apart: 23:50 and
// 00:10 differ by 1420 minutes.
func TimeDiffMinutes(a, b string) int {
	ma, _ := ParseClock(a)
	mb, _ := ParseClock(b)
	diff := ma - mb
	if diff < 0 {
		return -diff
	}
	return diff
}
