package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DigitsOnly strips every non-digit rune from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAmount parses a matched monetary token into a decimal value.
// Thousands separators are removed before parsing. A token that still does
// not parse returns ok=false; callers leave the field unset rather than
// propagate the failure.
func NormalizeAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// NormalizePhone keeps digits and a single leading plus sign.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	digits := DigitsOnly(s)
	if strings.HasPrefix(s, "+") && digits != "" {
		return "+" + digits
	}
	return digits
}

// NormalizeCurrency upper-cases a matched currency code.
func NormalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeName collapses interior whitespace runs in a captured name and
// trims the edges. Matched names stay on a single line, so only spaces are
// collapsed.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
