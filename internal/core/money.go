// Package core holds the ledger domain types shared by every backend and surface.
//
// Amounts are whole yen stored as int64. Fractional input is rounded half-up
// on parse; projection arithmetic switches to decimal.Decimal.
package core

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ParseAmount converts user input such as "1,200", "¥3000" or "1500.5" into whole yen.
//
// Thousands separators and a leading yen sign are ignored. Fractions round half-up.
// Zero, negative and malformed values are rejected with an *InputError.
func ParseAmount(s string) (int64, error) {
	v, err := parseYen("amount", s)
	if err != nil {
		return 0, err
	}
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseBudget is ParseAmount for budgets, where zero is allowed.
func ParseBudget(s string) (int64, error) {
	v, err := parseYen("budget", s)
	if err != nil {
		return 0, err
	}
	if err := ValidateBudget(v); err != nil {
		return 0, err
	}
	return v, nil
}

// parseYen accepts plain digits with an optional fraction only. Exponents are
// rejected before decimal parsing so input size bounds the work done.
func parseYen(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "_", "")
	if s == "" {
		return 0, Invalid(field, field+" is required")
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, Invalid(field, field+" must be a positive number")
	}
	if !plainNumber(s) {
		return 0, Invalid(field, field+" must be a number")
	}
	whole, _, _ := strings.Cut(s, ".")
	if len(strings.TrimLeft(whole, "0")) > maxAmountDigits {
		return 0, Invalid(field, field+" is too large")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Invalid(field, field+" must be a number")
	}
	d = d.Round(0)
	if d.GreaterThan(decimal.NewFromInt(maxAmount)) {
		return 0, Invalid(field, field+" is too large")
	}
	return d.IntPart(), nil
}

// plainNumber reports digits with at most one decimal point and at least one digit.
func plainNumber(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// FormatYen renders whole yen with thousands separators, e.g. ¥-12,000.
func FormatYen(amount int64) string {
	return "¥" + humanize.Comma(amount)
}

// maxAmount bounds parsed input well below int64 overflow when summing a month.
const (
	maxAmount       = 1_000_000_000_000
	maxAmountDigits = 13
)
