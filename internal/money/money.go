// Package money wraps govalues minor-unit amounts in the small value type the
// rest of the service works with: parse user input, add/subtract, sign checks,
// display formatting. Amounts are exact; there is no float anywhere.
package money

import (
	"strings"

	gv "github.com/govalues/money"

	"github.com/spendware/walletd/internal/errs"
)

// Money is a signed fixed-precision amount in a single currency.
// The zero value is not usable; construct via Zero, Parse or FromMinorUnits.
type Money struct {
	amt gv.Amount
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	a, _ := gv.NewAmountFromMinorUnits(strings.ToUpper(currency), 0)
	return Money{amt: a}
}

// FromMinorUnits constructs an amount from integer minor units (e.g. cents).
func FromMinorUnits(currency string, units int64) (Money, error) {
	a, err := gv.NewAmountFromMinorUnits(strings.ToUpper(currency), units)
	if err != nil {
		return Money{}, errs.ErrInvalidAmount
	}
	return Money{amt: a}, nil
}

// MustFromMinorUnits is FromMinorUnits for seeds and tests.
func MustFromMinorUnits(currency string, units int64) Money {
	m, err := FromMinorUnits(currency, units)
	if err != nil {
		panic(err)
	}
	return m
}

// Parse converts user text like "120" or "120.50" into an amount.
// Rejects negatives, malformed input, and more than two fraction digits.
func Parse(currency, text string) (Money, error) {
	units, err := parseMinorUnits(text)
	if err != nil {
		return Money{}, err
	}
	return FromMinorUnits(currency, units)
}

// ParsePositive is Parse but additionally rejects zero.
func ParsePositive(currency, text string) (Money, error) {
	m, err := Parse(currency, text)
	if err != nil {
		return Money{}, err
	}
	if m.IsZero() {
		return Money{}, errs.ErrInvalidAmount
	}
	return m, nil
}

// parseMinorUnits parses a non-negative decimal string with at most two
// fraction digits into minor units.
func parseMinorUnits(text string) (int64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, errs.ErrInvalidAmount
	}
	if s[0] == '+' {
		s = s[1:]
	}
	if s == "" || s[0] == '-' {
		return 0, errs.ErrInvalidAmount
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, errs.ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, errs.ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	var units int64
	for _, part := range []string{whole, frac} {
		for i := 0; i < len(part); i++ {
			c := part[i]
			if c < '0' || c > '9' {
				return 0, errs.ErrInvalidAmount
			}
			units = units*10 + int64(c-'0')
			if units < 0 {
				return 0, errs.ErrInvalidAmount
			}
		}
	}
	return units, nil
}

// Add returns m + o. Both sides must share a currency.
func (m Money) Add(o Money) (Money, error) {
	v, err := m.amt.Add(o.amt)
	if err != nil {
		return Money{}, errs.ErrInvalidAmount
	}
	return Money{amt: v}, nil
}

// Sub returns m - o. Both sides must share a currency. The result may be
// negative.
func (m Money) Sub(o Money) (Money, error) {
	v, err := m.amt.Sub(o.amt)
	if err != nil {
		return Money{}, errs.ErrInvalidAmount
	}
	return Money{amt: v}, nil
}

// Neg returns -m.
func (m Money) Neg() Money {
	v, err := Zero(m.Currency()).Sub(m)
	if err != nil {
		return m
	}
	return v
}

// MinorUnits returns the amount as integer minor units.
func (m Money) MinorUnits() int64 {
	units, _ := m.amt.MinorUnits()
	return units
}

// Currency returns the ISO 4217 code.
func (m Money) Currency() string { return m.amt.Curr().Code() }

func (m Money) IsNegative() bool { return m.MinorUnits() < 0 }
func (m Money) IsZero() bool     { return m.MinorUnits() == 0 }

// Format renders the amount with a display symbol, e.g. "$120.50" or
// "-$3.99" for negatives.
func (m Money) Format(symbol string) string {
	units := m.MinorUnits()
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return sign + symbol + formatUnits(units)
}

// String renders the bare decimal amount, e.g. "120.50".
func (m Money) String() string {
	units := m.MinorUnits()
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return sign + formatUnits(units)
}

func formatUnits(units int64) string {
	whole := units / 100
	frac := units % 100
	return itoa(whole) + "." + string([]byte{byte('0' + frac/10), byte('0' + frac%10)})
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
