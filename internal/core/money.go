// Package core provides money parsing and handling utilities.
//
// This file contains the amount parser shared by every numeric command
// argument and the rounding/formatting helpers used for display.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var ErrNotANumber = errors.New("amount must be a number")

// ParseAmount converts a command argument to a float.
//
// Trailing percent signs are stripped first so "20%" and "20" are the same
// value. Sign is preserved; range checks belong to the caller. NaN and
// infinities are rejected.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.5, nil
//	ParseAmount("20%")   -> 20, nil
//	ParseAmount("-3")    -> -3, nil
//	ParseAmount("abc")   -> 0, ErrNotANumber
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimRight(s, "%"))
	if s == "" {
		return 0, ErrNotANumber
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotANumber
	}
	return v, nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatMoney renders an amount as "$1,234.56".
func FormatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatPercent renders a percent with no decimals, e.g. "20%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(math.Round(p), 'f', 0, 64) + "%"
}
