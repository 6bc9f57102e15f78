// Package money provides shared amount parsing and formatting utilities.
//
// The platform is single-currency with 2 decimal places. All amounts are
// handled as int64 in the smallest unit (1 unit of currency = 100 cents),
// which is also how the payment gateway expects them rendered ("499.00").
package money

import (
	"math"
	"strconv"
	"strings"
)

const Decimals = 2

// Parse converts a decimal string (e.g. "499.5") to its smallest-unit
// int64 representation (49950). Returns (0, false) on invalid input.
//
// Rules:
//   - Empty and negative amounts are rejected
//   - Multiple decimal points are rejected
//   - Fractional parts are padded/truncated to 2 decimal places
func Parse(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, false
	}
	whole := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return 0, false
	}
	if whole == "" {
		whole = "0"
	}

	// Pad or trim to 2 decimals
	for len(frac) < Decimals {
		frac += "0"
	}
	frac = frac[:Decimals]

	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, false
	}
	return cents, true
}

// Format converts a smallest-unit int64 to a decimal string with exactly
// 2 decimal places (e.g. "499.00"). This is the only rendering the gateway
// accepts in signing strings and OutSum.
func Format(cents int64) string {
	neg := cents < 0
	if cents == math.MinInt64 {
		// Abs would overflow; no real amount gets here
		cents++
	}
	abs := cents
	if neg {
		abs = -abs
	}
	s := strconv.FormatInt(abs, 10)
	for len(s) < Decimals+1 {
		s = "0" + s
	}
	decimal := len(s) - Decimals
	result := s[:decimal] + "." + s[decimal:]
	if neg {
		result = "-" + result
	}
	return result
}
