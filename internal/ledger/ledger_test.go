package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/store"
)

type memLog struct {
	txns []core.Transaction
	err  error
}

func (m *memLog) AppendTransaction(_ context.Context, t core.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.txns = append(m.txns, t)
	return nil
}

func (m *memLog) LoadTransactions(context.Context) store.Loaded[[]core.Transaction] {
	return store.Found(m.txns)
}

func (m *memLog) RewriteTransactions(_ context.Context, txns []core.Transaction) error {
	m.txns = txns
	return nil
}

func tx(kind core.Kind, amount float64) core.Transaction {
	return core.NewTransaction(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), kind, amount, "")
}

func TestAppendSkipsNonPositive(t *testing.T) {
	ctx := context.Background()
	log := &memLog{}
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	l := New(log, func() time.Time { return at })

	for _, amount := range []float64{0, -5} {
		if _, ok, err := l.Append(ctx, core.KindAdd, amount, ""); ok || err != nil {
			t.Fatalf("amount %v should be skipped", amount)
		}
	}
	got, ok, err := l.Append(ctx, core.KindSpend, 12.5, " lunch ")
	if !ok || err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if len(log.txns) != 1 || got.Note != "lunch" || got.TS != at.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected ledger %+v", log.txns)
	}

	log.err = errors.New("disk full")
	if _, _, err := l.Append(ctx, core.KindAdd, 1, ""); !errors.Is(err, log.err) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}

func TestFilterSince(t *testing.T) {
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	txns := []core.Transaction{
		core.NewTransaction(base.Add(-48*time.Hour), core.KindAdd, 1, ""),
		{TS: "not a date", Type: core.KindAdd, Amount: 99},
		core.NewTransaction(base.Add(-time.Hour), core.KindSpend, 2, ""),
		core.NewTransaction(base, core.KindSpend, 3, ""),
	}

	if got := FilterSince(txns, time.Time{}); len(got) != 3 {
		t.Fatalf("zero cutoff should keep all parsable records, got %d", len(got))
	}
	got := FilterSince(txns, base.Add(-24*time.Hour))
	if len(got) != 2 || got[0].Amount != 2 || got[1].Amount != 3 {
		t.Fatalf("unexpected window %+v", got)
	}
	if got := FilterSince(txns, base); len(got) != 1 {
		t.Fatalf("cutoff is inclusive, got %d", len(got))
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(FilterSince([]core.Transaction{
		tx(core.KindAdd, 50),
		tx(core.KindSpend, 20),
		tx(core.KindMoveToSavings, 10),
	}, time.Time{}))
	want := core.Totals{Added: 50, Spent: 20, Saved: 10}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}

	got = Aggregate([]core.Transaction{
		tx(core.KindAutoMoveToSavings, 5),
		tx(core.KindMoveToAccount, 4),
		tx("bonus", 1000),
	})
	if got != (core.Totals{Saved: 5, MovedBack: 4}) {
		t.Fatalf("unknown kinds should be ignored, got %+v", got)
	}
}

func TestSpentTotal(t *testing.T) {
	if got := SpentTotal([]core.Transaction{tx(core.KindSpend, 2), tx(core.KindAdd, 9), tx(core.KindSpend, 3)}); got != 5 {
		t.Fatalf("got %v", got)
	}
}

func TestReverseIsInverseOfApply(t *testing.T) {
	start := core.Balances{Account: 100, Savings: 40}
	for _, kind := range []core.Kind{core.KindAdd, core.KindSpend, core.KindMoveToSavings, core.KindAutoMoveToSavings, core.KindMoveToAccount} {
		rec := tx(kind, 30)
		fwd, err := Apply(start, rec)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		back, err := Reverse(fwd, rec)
		if err != nil || back != start {
			t.Fatalf("%s: round trip gave %+v err=%v", kind, back, err)
		}
	}
	if _, err := Reverse(start, tx("bonus", 1)); !errors.Is(err, core.ErrNotReversible) {
		t.Fatalf("expected ErrNotReversible, got %v", err)
	}
}

func TestReverseClampsAtZero(t *testing.T) {
	got, err := Reverse(core.Balances{Account: 10}, tx(core.KindAdd, 40))
	if err != nil || got.Account != 0 {
		t.Fatalf("undo should clamp, got %+v err=%v", got, err)
	}
}

func TestPlanUndo(t *testing.T) {
	if _, err := PlanUndo(nil, core.Balances{}); !errors.Is(err, core.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}

	txns := []core.Transaction{tx(core.KindAdd, 100), tx(core.KindSpend, 30)}
	plan, err := PlanUndo(txns, core.Balances{Account: 70})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Balances != (core.Balances{Account: 100}) || len(plan.Remaining) != 1 || plan.Undone.Type != core.KindSpend {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(txns) != 2 {
		t.Fatalf("input must not be modified")
	}

	_, err = PlanUndo([]core.Transaction{tx(core.KindAdd, 1), tx("bonus", 5)}, core.Balances{})
	if !errors.Is(err, core.ErrNotReversible) || !errors.Is(err, core.ErrUndoUnavailable) {
		t.Fatalf("expected ErrNotReversible, got %v", err)
	}
}
