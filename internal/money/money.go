package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

// ParseMinor converts a decimal amount string (like "1,234.56") into integer
// minor units (pesewas/cents). Thousands separators are stripped first.
// Parsing goes through shopspring/decimal so no float ever touches the value.
func ParseMinor(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, ErrInvalidMoney
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	if d.IsNegative() {
		return 0, ErrInvalidMoney
	}
	minor := d.Mul(decimal.NewFromInt(100)).Round(0)
	// int64 max ~9e18 => major amount max ~9e16
	if minor.GreaterThan(decimal.New(1, 18)) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return minor.IntPart(), nil
}

// FormatMinor renders integer minor units as a "123.45" style string
// without going through float.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	major := minor / 100
	cents := minor % 100
	return fmt.Sprintf("%s%d.%02d", sign, major, cents)
}
