package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	KindAdd               Kind = "add"
	KindSpend             Kind = "spend"
	KindMoveToSavings     Kind = "move_to_savings"
	KindAutoMoveToSavings Kind = "auto_move_to_savings"
	KindMoveToAccount     Kind = "move_to_account"
)

// DefaultGoalName is used when no goal name has ever been set.
const DefaultGoalName = "My Goal"

type (
	// Kind is the type tag of a ledger record. Unknown values are preserved
	// as read so that rewriting the ledger never loses records.
	Kind string

	// Balances holds the two monetary pots. Both are never negative.
	Balances struct {
		Account float64 `json:"account"`
		Savings float64 `json:"savings"`
	}

	// Transaction is one ledger record, persisted as a single JSON line.
	Transaction struct {
		TS     string  `json:"ts"`
		Type   Kind    `json:"type"`
		Amount float64 `json:"amount"`
		Note   string  `json:"note,omitempty"`
	}

	Goal struct {
		Name   string  `json:"goal_name"`
		Amount float64 `json:"goal_amount"`
	}

	Settings struct {
		AutoSavePercent float64 `json:"auto_save_percent"`
	}
)

// IsKnown reports whether k is one of the five kinds the ledger can reverse.
func (k Kind) IsKnown() bool {
	switch k {
	case KindAdd, KindSpend, KindMoveToSavings, KindAutoMoveToSavings, KindMoveToAccount:
		return true
	}
	return false
}

// Finite reports whether neither balance overflowed.
func (b Balances) Finite() bool {
	return !math.IsInf(b.Account, 0) && !math.IsNaN(b.Account) &&
		!math.IsInf(b.Savings, 0) && !math.IsNaN(b.Savings)
}

// Normalize clamps both balances at zero.
func (b Balances) Normalize() Balances {
	return Balances{Account: max(b.Account, 0), Savings: max(b.Savings, 0)}
}

// NewTransaction stamps a record with at, formatted as RFC 3339 with
// sub-second precision.
func NewTransaction(at time.Time, kind Kind, amount float64, note string) Transaction {
	return Transaction{
		TS:     at.Format(time.RFC3339Nano),
		Type:   kind,
		Amount: amount,
		Note:   strings.TrimSpace(note),
	}
}

// timestampLayouts accepts what this program writes plus the naive
// ISO-8601 forms older ledgers contain.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time parses the record timestamp. Naive timestamps are read in local time.
func (t Transaction) Time() (time.Time, error) {
	ts := strings.TrimSpace(t.TS)
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, ts, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", t.TS)
}

// DefaultGoal returns the goal used when none is stored.
func DefaultGoal() Goal {
	return Goal{Name: DefaultGoalName}
}

// Progress returns min(savings/target, 1). ok is false when no goal is set.
func (g Goal) Progress(savings float64) (fraction float64, ok bool) {
	if g.Amount <= 0 {
		return 0, false
	}
	return min(max(savings, 0)/g.Amount, 1.0), true
}

// Normalize fills an empty name and clamps a negative target.
func (g Goal) Normalize() Goal {
	if strings.TrimSpace(g.Name) == "" {
		g.Name = DefaultGoalName
	}
	g.Amount = max(g.Amount, 0)
	return g
}

// Normalize clamps the percent into [0,100].
func (s Settings) Normalize() Settings {
	return Settings{AutoSavePercent: ClampPercent(s.AutoSavePercent)}
}

// ClampPercent limits p to [0,100].
func ClampPercent(p float64) float64 {
	return min(max(p, 0), 100)
}
