// Package core provides the domain types shared by the schema builder,
// the measure engine and the adapters.
//
// This file contains functions for parsing monetary amounts from strings.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a signed decimal string to a decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading sign and surrounding whitespace. Zero and positive values
// are valid: sign is data, not an error condition.
//
// Examples:
//   ParseAmount("-12.34") -> -12.34, nil
//   ParseAmount("12,34")  -> 12.34, nil
//   ParseAmount("+200")   -> 200, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	s = strings.TrimPrefix(s, "+")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
