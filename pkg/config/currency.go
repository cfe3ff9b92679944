package config

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrencyAmount converts a configured currency string into minor units.
// An integer string with no decimal point whose value exceeds 1000 is treated
// as already being minor units; anything else is read as major units and
// multiplied by 100 with half-up rounding. The ok result is false when the
// value is empty or unparseable.
func ParseCurrencyAmount(raw string) (int64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}

	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, false
	}
	if value.IsNegative() {
		return 0, false
	}

	if !strings.Contains(trimmed, ".") && value.IsInteger() && value.GreaterThan(decimal.NewFromInt(1000)) {
		return value.IntPart(), true
	}
	return value.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), true
}

// ResolveCurrencyAmount parses raw and falls back to def when parsing fails.
func ResolveCurrencyAmount(raw string, def int64) int64 {
	if cents, ok := ParseCurrencyAmount(raw); ok {
		return cents
	}
	return def
}
