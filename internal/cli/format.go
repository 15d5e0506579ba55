package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// FormatMoney formats cents as euros with thousands separators,
// e.g. 123456 -> "€1,234.56", -5 -> "-€0.05".
func FormatMoney(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s€%s.%02d", sign, FormatNumber(cents/100), cents%100)
}

// FormatOptionalMoney renders nil as a dash.
func FormatOptionalMoney(m *core.Money) string {
	if m == nil {
		return "-"
	}
	return FormatMoney(*m)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a percentage already expressed on a 0-100 scale.
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}

// FormatRatio formats a 0-1 float as a percentage string.
func FormatRatio(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// Truncate shortens s to limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit || limit < 1 {
		return s
	}
	return string(r[:limit-1]) + "…"
}
