// Package units converts between decimal display strings and base-unit
// integers, and renders the time-left strings shown by the panels.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Decimals of every BNB-family native token.
const Decimals = 18

var (
	ErrEmpty      = errors.New("empty amount")
	ErrNotNumber  = errors.New("not a decimal number")
	ErrTooPrecise = errors.New("too many fractional digits")
	ErrNotInteger = errors.New("not a whole number")
)

// ParseAmount converts a decimal display string such as "0.01" into base
// units with the given number of decimals. It never goes through floating
// point. Signs, exponents and thousands separators are rejected.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	if len(frac) > int(decimals) {
		return nil, fmt.Errorf("%w: %q has %d, max %d", ErrTooPrecise, s, len(frac), decimals)
	}

	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", int(decimals)-len(frac)), "0")
	if digits == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotNumber, s)
	}
	return v, nil
}

// ParseEther is ParseAmount with 18 decimals.
func ParseEther(s string) (*big.Int, error) {
	return ParseAmount(s, Decimals)
}

// FormatAmount renders base units as a decimal string with trailing
// fractional zeros removed ("10000000000000000" → "0.01", 10^18 → "1").
func FormatAmount(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	base := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(abs, base, new(big.Int))

	out := q.String()
	if r.Sign() != 0 {
		frac := fmt.Sprintf("%0*s", int(decimals), r.String())
		out += "." + strings.TrimRight(frac, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatEther is FormatAmount with 18 decimals.
func FormatEther(v *big.Int) string {
	return FormatAmount(v, Decimals)
}

// Canonical normalises a decimal string the way FormatAmount would print
// it: no leading integer zeros, no trailing fractional zeros, no bare dot.
func Canonical(s string) string {
	whole, frac, _ := strings.Cut(strings.TrimSpace(s), ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// ParseInteger parses a plain non-negative base-10 integer (ticket counts,
// candidate indices, durations).
func ParseInteger(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}
	if !digitsOnly(s) {
		return nil, fmt.Errorf("%w: %q", ErrNotInteger, s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotInteger, s)
	}
	return v, nil
}

func digitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
