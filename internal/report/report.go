// Package report derives windowed totals and the lifetime composition of
// funds from the ledger.
package report

import (
	"strings"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/ledger"
)

const day = 24 * time.Hour

// Range is a named report window. Lifetime ranges have no cutoff.
type Range struct {
	Name     string
	Span     time.Duration
	Lifetime bool
}

var (
	Range24h      = Range{Name: "24h", Span: day}
	RangeWeek     = Range{Name: "week", Span: 7 * day}
	RangeMonth    = Range{Name: "month", Span: 30 * day}
	RangeYear     = Range{Name: "year", Span: 365 * day}
	Range5Years   = Range{Name: "5y", Span: 5 * 365 * day}
	RangeLifetime = Range{Name: "lifetime", Lifetime: true}
)

// DefaultRange is used when no token is given.
var DefaultRange = RangeMonth

var rangeAliases = map[string]Range{
	"24h": Range24h, "day": Range24h, "daily": Range24h,
	"week": RangeWeek, "weekly": RangeWeek, "wk": RangeWeek,
	"month": RangeMonth, "monthly": RangeMonth, "mo": RangeMonth,
	"year": RangeYear, "yearly": RangeYear, "yr": RangeYear,
	"5y": Range5Years, "5yr": Range5Years, "5yrs": Range5Years, "5years": Range5Years,
	"life": RangeLifetime, "lifetime": RangeLifetime, "all": RangeLifetime,
}

// RangeTokens lists the canonical tokens in display order.
func RangeTokens() []string {
	return []string{"24h", "day", "week", "month", "year", "5y", "lifetime"}
}

// ParseRange resolves a token, case-insensitively. An empty token is the
// default range; ok is false for anything unrecognised.
func ParseRange(token string) (Range, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return DefaultRange, true
	}
	r, ok := rangeAliases[token]
	return r, ok
}

// Cutoff returns the start of the window ending at now, zero for lifetime.
func (r Range) Cutoff(now time.Time) time.Time {
	if r.Lifetime {
		return time.Time{}
	}
	return now.Add(-r.Span)
}

type Report struct {
	Range       Range
	Since       time.Time
	Totals      core.Totals
	Composition core.Composition
	// Count is the number of records inside the window.
	Count int
}

// Build aggregates history over r. The composition always uses the
// lifetime spend, whatever the window.
func Build(r Range, history []core.Transaction, b core.Balances, now time.Time) Report {
	since := r.Cutoff(now)
	window := ledger.FilterSince(history, since)
	return Report{
		Range:  r,
		Since:  since,
		Totals: ledger.Aggregate(window),
		Composition: core.Composition{
			Account: b.Account,
			Savings: b.Savings,
			Spent:   ledger.SpentTotal(history),
		},
		Count: len(window),
	}
}
