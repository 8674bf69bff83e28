// Package core provides the domain types of the ledger, the fiscal calendar
// and the typed errors returned to callers.
//
// This file contains the yen amount type. Yen has no minor unit, so amounts
// are whole int64 values.
package core

import (
	"strconv"
	"strings"
)

// Yen is an amount in Japanese yen.
type Yen int64

// ParseYen converts a user-entered amount to Yen.
//
// It accepts an optional leading "¥" or "￥" and thousands separators.
// Only positive whole amounts are valid.
//
// Examples:
//
//	ParseYen("1000")    -> 1000, nil
//	ParseYen("¥1,000")  -> 1000, nil
//	ParseYen("10.5")    -> 0, error
func ParseYen(s string) (Yen, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "¥")
	s = strings.TrimPrefix(s, "￥")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, invalidAmount(s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, invalidAmount(s)
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, invalidAmount(s)
	}
	y := Yen(v)
	if err := y.Validate(); err != nil {
		return 0, err
	}
	return y, nil
}

// Validate requires a positive amount.
func (y Yen) Validate() error {
	if y <= 0 {
		return Validation(CodeInvalidAmount, "amount must be positive, got %d", int64(y))
	}
	return nil
}

// String formats the amount with a yen sign and thousands separators ("¥1,234").
func (y Yen) String() string {
	v := int64(y)
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-¥" + b.String()
	}
	return "¥" + b.String()
}

func invalidAmount(s string) error {
	return Validation(CodeInvalidAmount, "invalid amount %q", s)
}
