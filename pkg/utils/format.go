// Package utils provides common formatting helpers for donutreport.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used in reports and tables.
const DateLayout = "2006-01-02"

// FormatUSD formats an amount as US dollars with thousands separators
// ($1,234.50). Non-finite amounts render as "n/a".
func FormatUSD(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	negative := amount < 0
	amount = math.Abs(amount)

	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100

	formatted := fmt.Sprintf("$%s.%02d", groupThousands(whole), frac)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// FormatUSDCompact formats an amount for axis labels: $950, $1.2K, $3.4M.
func FormatUSDCompact(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	prefix := "$"
	if amount < 0 {
		prefix = "-$"
		amount = -amount
	}
	switch {
	case amount >= 1e6:
		return fmt.Sprintf("%s%.1fM", prefix, amount/1e6)
	case amount >= 1e3:
		return fmt.Sprintf("%s%.1fK", prefix, amount/1e3)
	case amount >= 100:
		return fmt.Sprintf("%s%.0f", prefix, amount)
	default:
		return fmt.Sprintf("%s%.2f", prefix, amount)
	}
}

// FormatQuantity formats a count that may be fractional: 3, 2.5, 1.25.
func FormatQuantity(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// FormatDate formats a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// groupThousands inserts commas every three digits.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
