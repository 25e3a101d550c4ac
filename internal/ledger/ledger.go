// Package ledger implements the operations over the append-only
// transaction log: appending, windowing, aggregation and single-step undo.
package ledger

import (
	"context"
	"fmt"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/store"
)

// Ledger appends to a transaction log with a clock.
type Ledger struct {
	log store.TransactionLog
	now func() time.Time
}

func New(log store.TransactionLog, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{log: log, now: now}
}

// Append writes a record stamped with the current time. Amounts that are
// not positive are never recorded; ok is false in that case.
func (l *Ledger) Append(ctx context.Context, kind core.Kind, amount float64, note string) (tx core.Transaction, ok bool, err error) {
	if amount <= 0 {
		return core.Transaction{}, false, nil
	}
	tx = core.NewTransaction(l.now(), kind, amount, note)
	if err := l.log.AppendTransaction(ctx, tx); err != nil {
		return core.Transaction{}, false, fmt.Errorf("append %s: %w", kind, err)
	}
	return tx, true, nil
}

// History loads the full ledger.
func (l *Ledger) History(ctx context.Context) store.Loaded[[]core.Transaction] {
	return l.log.LoadTransactions(ctx)
}

// FilterSince returns the records at or after cutoff, in order. A zero
// cutoff keeps every parsable record. Records whose timestamp cannot be
// parsed are dropped.
func FilterSince(txns []core.Transaction, cutoff time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		at, err := t.Time()
		if err != nil {
			continue
		}
		if !cutoff.IsZero() && at.Before(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Aggregate sums amounts by category. Unknown kinds are ignored.
func Aggregate(txns []core.Transaction) core.Totals {
	var tot core.Totals
	for _, t := range txns {
		switch t.Type {
		case core.KindAdd:
			tot.Added += t.Amount
		case core.KindSpend:
			tot.Spent += t.Amount
		case core.KindMoveToSavings, core.KindAutoMoveToSavings:
			tot.Saved += t.Amount
		case core.KindMoveToAccount:
			tot.MovedBack += t.Amount
		}
	}
	return tot
}

// SpentTotal is the sum of every spend record regardless of timestamp.
func SpentTotal(txns []core.Transaction) float64 {
	var total float64
	for _, t := range txns {
		if t.Type == core.KindSpend {
			total += t.Amount
		}
	}
	return total
}

// Apply returns b with the forward effect of t.
func Apply(b core.Balances, t core.Transaction) (core.Balances, error) {
	switch t.Type {
	case core.KindAdd:
		b.Account += t.Amount
	case core.KindSpend:
		b.Account -= t.Amount
	case core.KindMoveToSavings, core.KindAutoMoveToSavings:
		b.Account -= t.Amount
		b.Savings += t.Amount
	case core.KindMoveToAccount:
		b.Savings -= t.Amount
		b.Account += t.Amount
	default:
		return b, fmt.Errorf("%w: %q", core.ErrNotReversible, t.Type)
	}
	return b, nil
}

// Reverse returns b with the effect of t undone. Each balance is clamped
// at zero, so a ledger that diverged from the balances (for example after
// "delete money") can never drive a pot negative.
func Reverse(b core.Balances, t core.Transaction) (core.Balances, error) {
	switch t.Type {
	case core.KindAdd:
		b.Account -= t.Amount
	case core.KindSpend:
		b.Account += t.Amount
	case core.KindMoveToSavings, core.KindAutoMoveToSavings:
		b.Savings -= t.Amount
		b.Account += t.Amount
	case core.KindMoveToAccount:
		b.Account -= t.Amount
		b.Savings += t.Amount
	default:
		return b, fmt.Errorf("%w: %q", core.ErrNotReversible, t.Type)
	}
	return b.Normalize(), nil
}

// UndoPlan is the result of popping the most recent record.
type UndoPlan struct {
	Remaining []core.Transaction
	Balances  core.Balances
	Undone    core.Transaction
}

// PlanUndo pops the last record of txns and reverses it against b. The
// input slice is not modified. An empty ledger yields ErrNothingToUndo and a
// record of unknown kind yields ErrNotReversible; in both cases nothing is
// popped.
func PlanUndo(txns []core.Transaction, b core.Balances) (UndoPlan, error) {
	if len(txns) == 0 {
		return UndoPlan{}, core.ErrNothingToUndo
	}
	last := txns[len(txns)-1]
	nb, err := Reverse(b, last)
	if err != nil {
		return UndoPlan{}, err
	}
	remaining := make([]core.Transaction, len(txns)-1)
	copy(remaining, txns[:len(txns)-1])
	return UndoPlan{Remaining: remaining, Balances: nb, Undone: last}, nil
}
