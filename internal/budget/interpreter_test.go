package budget

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"budgeter/internal/core"
)

var testNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func snapshot(account, savings float64) Snapshot {
	return Snapshot{State: State{
		Balances: core.Balances{Account: account, Savings: savings},
		Goal:     core.DefaultGoal(),
		Theme:    core.DefaultTheme(),
	}}
}

// commit applies the ledger effects of o to s the way the service does.
func commit(s Snapshot, o Outcome) Snapshot {
	if o.Err != nil {
		return s
	}
	history := append([]core.Transaction(nil), s.History...)
	for _, e := range o.Effects {
		switch e := e.(type) {
		case AppendEntry:
			history = append(history, core.NewTransaction(testNow, e.Kind, e.Amount, e.Note))
		case RewriteLedger:
			history = append([]core.Transaction(nil), e.Entries...)
		}
	}
	return Snapshot{State: o.State, History: history}
}

func run(s Snapshot, lines ...string) (Snapshot, Outcome) {
	var o Outcome
	for _, line := range lines {
		o = Execute(line, s, testNow)
		s = commit(s, o)
	}
	return s, o
}

func appended(o Outcome) []AppendEntry {
	var out []AppendEntry
	for _, e := range o.Effects {
		if a, ok := e.(AppendEntry); ok {
			out = append(out, a)
		}
	}
	return out
}

func lastText(o Outcome) string {
	if len(o.Messages) == 0 {
		return ""
	}
	return o.Messages[len(o.Messages)-1].Text
}

func TestHandlerTableIsTotal(t *testing.T) {
	for v := Verb(0); v < verbCount; v++ {
		if handlers[v] == nil {
			t.Fatalf("verb %v has no handler", v)
		}
		if verbNames[v] == "" {
			t.Fatalf("verb %d has no name", v)
		}
	}
	for alias, v := range verbAliases {
		if v == VerbUnknown {
			t.Fatalf("alias %q maps to unknown", alias)
		}
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		line string
		want Verb
	}{
		{"ADD 5", VerbAdd},
		{"deposit 5", VerbAdd},
		{"mv 5", VerbSave},
		{"pay 5", VerbSpend},
		{"withdraw 5", VerbBack},
		{"Wipe MONEY all", VerbDeleteMoney},
		{"clear money a 3", VerbDeleteMoney},
		{"delete everything", VerbUnknown},
		{"how do I save more", VerbUnknown},
	}
	for _, tc := range cases {
		tokens, err := Tokenize(tc.line)
		if err != nil {
			t.Fatal(err)
		}
		if got := Resolve(tokens); got != tc.want {
			t.Errorf("%q resolved to %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{"", "   ", `goal 300 "New laptop`} {
		o := Execute(line, snapshot(10, 0), testNow)
		var pe *core.ParseError
		if !errors.As(o.Err, &pe) {
			t.Fatalf("%q: expected ParseError, got %v", line, o.Err)
		}
		if len(o.Effects) != 0 || len(o.Messages) != 1 {
			t.Fatalf("%q: parse errors must not change anything", line)
		}
	}
	if o := Execute(" ", snapshot(0, 0), testNow); o.Messages[0].Level != LevelWarning {
		t.Fatalf("blank line is a warning")
	}
}

func TestAmountValidation(t *testing.T) {
	cases := []struct {
		line string
		msg  string
	}{
		{"add", "Missing amount."},
		{"add ten", "Amount must be a number."},
		{"add 0", "Amount must be greater than zero."},
		{"spend -4", "Amount must be greater than zero."},
		{"save nan", "Amount must be a number."},
		{"goal -1", "Goal amount cannot be negative."},
		{"autosave -5%", "Percent cannot be negative."},
		{"delete money account", "Usage: delete money account AMOUNT"},
		{"delete money savings x", "Amount must be a number."},
		{"theme", "Usage: theme THEME_NAME"},
	}
	for _, tc := range cases {
		o := Execute(tc.line, snapshot(50, 50), testNow)
		var ve *core.ValidationError
		if !errors.As(o.Err, &ve) {
			t.Errorf("%q: expected ValidationError, got %v", tc.line, o.Err)
			continue
		}
		if ve.Message != tc.msg || lastText(o) != tc.msg {
			t.Errorf("%q: message %q, want %q", tc.line, ve.Message, tc.msg)
		}
		if len(o.Effects) != 0 || o.State.Balances != (core.Balances{Account: 50, Savings: 50}) {
			t.Errorf("%q: validation errors must not change state", tc.line)
		}
	}
}

func TestAddWithAutosave(t *testing.T) {
	s := snapshot(0, 0)
	s.State.Settings.AutoSavePercent = 20

	s, o := run(s, "add 100")
	if s.State.Balances != (core.Balances{Account: 80, Savings: 20}) {
		t.Fatalf("unexpected balances %+v", s.State.Balances)
	}
	entries := appended(o)
	if len(entries) != 2 || entries[0] != (AppendEntry{Kind: core.KindAdd, Amount: 100}) || entries[1] != (AppendEntry{Kind: core.KindAutoMoveToSavings, Amount: 20}) {
		t.Fatalf("unexpected ledger entries %+v", entries)
	}
	if _, ok := o.Effects[len(o.Effects)-1].(SaveBalances); !ok {
		t.Fatalf("balances should be saved after logging")
	}
	if o.Messages[0].Text != "Auto-saved 20% ($20.00) from this deposit." {
		t.Fatalf("unexpected message %q", o.Messages[0].Text)
	}
	if lastText(o) != "Added $100.00. Account: $80.00" {
		t.Fatalf("unexpected message %q", lastText(o))
	}
}

func TestAddRoundsAutosave(t *testing.T) {
	s := snapshot(0, 0)
	s.State.Settings.AutoSavePercent = 33
	s, o := run(s, "add 10.01")
	if got := appended(o); len(got) != 2 || got[1].Amount != 3.3 {
		t.Fatalf("auto-save should round to 2 decimals, got %+v", got)
	}
	if s.State.Balances.Savings != 3.3 {
		t.Fatalf("unexpected savings %v", s.State.Balances.Savings)
	}
}

func TestMovesClampToAvailable(t *testing.T) {
	s, o := run(snapshot(40, 10), "save 100 rainy day")
	if s.State.Balances != (core.Balances{Account: 0, Savings: 50}) {
		t.Fatalf("save should clamp, got %+v", s.State.Balances)
	}
	if e := appended(o); len(e) != 1 || e[0].Amount != 40 || e[0].Note != "rainy day" {
		t.Fatalf("unexpected entry %+v", e)
	}

	s, o = run(s, "spend 5")
	if o.Messages[0].Level != LevelWarning || o.Messages[0].Text != "No available balance to spend." || len(o.Effects) != 0 {
		t.Fatalf("spend with empty account should only warn, got %+v", o)
	}

	s, _ = run(s, `back 80 "car repair"`)
	if s.State.Balances != (core.Balances{Account: 50, Savings: 0}) {
		t.Fatalf("back should clamp, got %+v", s.State.Balances)
	}
	if s.History[len(s.History)-1].Note != "car repair" {
		t.Fatalf("quoted note should be kept whole")
	}

	_, o = run(s, "back 1")
	if lastText(o) != "No savings available to move back." {
		t.Fatalf("unexpected message %q", lastText(o))
	}
	_, o = run(snapshot(0, 5), "save 1")
	if lastText(o) != "No available balance to move." {
		t.Fatalf("unexpected message %q", lastText(o))
	}
}

func TestSpendThenUndoRoundTrip(t *testing.T) {
	s, _ := run(snapshot(100, 0), "spend 30")
	if s.State.Balances != (core.Balances{Account: 70}) {
		t.Fatalf("after spend %+v", s.State.Balances)
	}
	s, o := run(s, "undo")
	if s.State.Balances != (core.Balances{Account: 100}) || len(s.History) != 0 {
		t.Fatalf("after undo %+v history=%d", s.State.Balances, len(s.History))
	}
	if !o.Refresh || lastText(o) != "Undid last transaction: spend $30.00" {
		t.Fatalf("unexpected undo outcome %+v", o)
	}
}

func TestUndoRoundTripForEveryReversibleCommand(t *testing.T) {
	for _, line := range []string{"add 25", "save 10", "spend 7.5", "back 3"} {
		start := snapshot(60, 40)
		after, _ := run(start, line)
		restored, _ := run(after, "undo")
		if restored.State.Balances != start.State.Balances {
			t.Errorf("%q: undo gave %+v, want %+v", line, restored.State.Balances, start.State.Balances)
		}
	}
}

func TestUndoUnavailable(t *testing.T) {
	_, o := run(snapshot(1, 1), "undo")
	if !errors.Is(o.Err, core.ErrNothingToUndo) || o.Messages[0].Level != LevelWarning {
		t.Fatalf("expected nothing-to-undo warning, got %+v", o)
	}

	s := snapshot(1, 1)
	s.History = []core.Transaction{{TS: testNow.Format(time.RFC3339), Type: "bonus", Amount: 5}}
	_, o = run(s, "undo")
	if !errors.Is(o.Err, core.ErrNotReversible) || lastText(o) != "Cannot undo this transaction type." || len(o.Effects) != 0 {
		t.Fatalf("expected not-reversible error, got %+v", o)
	}
}

func TestAddAutosaveNeedsTwoUndos(t *testing.T) {
	s := snapshot(0, 0)
	s.State.Settings.AutoSavePercent = 50
	s, _ = run(s, "add 10", "undo")
	if s.State.Balances != (core.Balances{Account: 10}) || len(s.History) != 1 {
		t.Fatalf("first undo reverses only the auto-save, got %+v", s.State.Balances)
	}
	s, _ = run(s, "undo")
	if s.State.Balances != (core.Balances{}) || len(s.History) != 0 {
		t.Fatalf("second undo reverses the deposit, got %+v", s.State.Balances)
	}
}

func TestDeleteMoney(t *testing.T) {
	s, o := run(snapshot(40, 25), "delete money account 999")
	if s.State.Balances != (core.Balances{Account: 0, Savings: 25}) {
		t.Fatalf("unexpected balances %+v", s.State.Balances)
	}
	if len(appended(o)) != 0 || len(s.History) != 0 {
		t.Fatalf("delete money must not touch the ledger")
	}
	if lastText(o) != "Deleted $40.00 from Account balance." {
		t.Fatalf("unexpected message %q", lastText(o))
	}

	s, _ = run(s, "clear money sav 5")
	if s.State.Balances.Savings != 20 {
		t.Fatalf("unexpected savings %v", s.State.Balances.Savings)
	}
	s, _ = run(s, "wipe money both")
	if s.State.Balances != (core.Balances{}) {
		t.Fatalf("all should zero both, got %+v", s.State.Balances)
	}

	for _, line := range []string{"delete money pockets", "delete money"} {
		_, o = run(s, line)
		if o.Err != nil || len(o.Effects) != 0 || len(o.Messages) != 1 {
			t.Fatalf("%q: usage is informational, got %+v", line, o)
		}
		if o.Messages[0].Level != LevelInfo || !strings.HasPrefix(lastText(o), "Usage:") {
			t.Fatalf("%q: unexpected message %+v", line, o.Messages[0])
		}
	}
}

func TestGoal(t *testing.T) {
	s, o := run(snapshot(0, 0), `goal 3000 "New laptop"`)
	if s.State.Goal != (core.Goal{Name: "New laptop", Amount: 3000}) {
		t.Fatalf("unexpected goal %+v", s.State.Goal)
	}
	if lastText(o) != "Goal set: New laptop ($3,000.00)" {
		t.Fatalf("unexpected message %q", lastText(o))
	}
	s, _ = run(s, "goal 500")
	if s.State.Goal.Name != "New laptop" || s.State.Goal.Amount != 500 {
		t.Fatalf("name should be kept, got %+v", s.State.Goal)
	}
	fresh := snapshot(0, 0)
	fresh.State.Goal = core.Goal{}
	fresh, _ = run(fresh, "goal 0")
	if fresh.State.Goal.Name != core.DefaultGoalName {
		t.Fatalf("empty name should fall back, got %+v", fresh.State.Goal)
	}
	s, _ = run(s, "goal 100 big trip")
	if s.State.Goal.Name != "big trip" {
		t.Fatalf("unquoted name tokens should be joined, got %q", s.State.Goal.Name)
	}
}

func TestAutosaveClamps(t *testing.T) {
	s, o := run(snapshot(0, 0), "autosave 150%")
	if s.State.Settings.AutoSavePercent != 100 {
		t.Fatalf("unexpected percent %v", s.State.Settings.AutoSavePercent)
	}
	if lastText(o) != "Auto-save set to 100% of each deposit." {
		t.Fatalf("unexpected message %q", lastText(o))
	}
	if _, ok := o.Effects[0].(SaveSettings); !ok {
		t.Fatalf("settings should be persisted")
	}
}

func TestTheme(t *testing.T) {
	for _, line := range []string{"theme DARK", "theme dark", "theme  Dark "} {
		s, o := run(snapshot(0, 0), line)
		if core.ThemeName(s.State.Theme) != "Dark" || !o.Refresh {
			t.Fatalf("%q: unexpected outcome %+v", line, o)
		}
	}
	s, _ := run(snapshot(0, 0), "theme solarized dark")
	if core.ThemeName(s.State.Theme) != "Solarized Dark" {
		t.Fatalf("multi-word theme names should match")
	}

	s, o := run(snapshot(0, 0), "theme neon")
	if o.Err == nil || s.State.Theme != core.DefaultTheme() || o.Refresh {
		t.Fatalf("unknown theme must leave theme unchanged, got %+v", o)
	}
	if !strings.Contains(lastText(o), "Light, Soft Gray, Dark") {
		t.Fatalf("error should list palette, got %q", lastText(o))
	}
}

func TestReport(t *testing.T) {
	s := snapshot(420, 10)
	s.History = []core.Transaction{
		core.NewTransaction(testNow.AddDate(0, -3, 0), core.KindSpend, 100, ""),
		core.NewTransaction(testNow.Add(-time.Hour), core.KindAdd, 50, ""),
		core.NewTransaction(testNow.Add(-time.Hour), core.KindSpend, 20, ""),
	}

	_, o := run(s, "report")
	if o.Report == nil || o.Report.Range.Name != "month" {
		t.Fatalf("report defaults to month, got %+v", o.Report)
	}
	if o.Report.Totals != (core.Totals{Added: 50, Spent: 20}) || o.Report.Composition.Spent != 120 {
		t.Fatalf("unexpected report %+v", o.Report)
	}
	if len(o.Effects) != 0 {
		t.Fatalf("report has no side effects")
	}

	_, o = run(s, "report LIFETIME")
	if o.Report.Totals.Spent != 120 {
		t.Fatalf("unexpected lifetime totals %+v", o.Report.Totals)
	}

	_, o = run(snapshot(0, 0), "report week")
	if o.Report == nil || lastText(o) != "No transactions found for this range yet." {
		t.Fatalf("empty window should say so, got %+v", o)
	}

	_, o = run(s, "report fortnight")
	var ve *core.ValidationError
	if !errors.As(o.Err, &ve) || o.Report != nil || !strings.Contains(ve.Message, "24h, day, week") {
		t.Fatalf("unknown range should be a validation error, got %+v", o)
	}
}

func TestUnknownCommandIsJournaledAndForwarded(t *testing.T) {
	line := `how much "should" I save?`
	_, o := run(snapshot(0, 0), line)
	if o.Verb != VerbUnknown || len(o.Effects) != 2 {
		t.Fatalf("unexpected outcome %+v", o)
	}
	j, ok := o.Effects[0].(JournalCommand)
	if !ok || j.Line != line || !j.At.Equal(testNow) {
		t.Fatalf("expected journal effect first, got %+v", o.Effects[0])
	}
	if a, ok := o.Effects[1].(RequestAdvice); !ok || a.Command != line {
		t.Fatalf("expected advice request, got %+v", o.Effects[1])
	}
}

func TestHelp(t *testing.T) {
	_, o := run(snapshot(0, 0), "HELP")
	if !strings.HasPrefix(lastText(o), "Commands:") || len(o.Effects) != 0 {
		t.Fatalf("unexpected help outcome %+v", o)
	}
}

func TestBalancesNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	verbs := []string{"add", "spend", "save", "back", "undo", "delete money account", "delete money savings"}
	s := snapshot(0, 0)
	s.State.Settings.AutoSavePercent = 15
	for i := 0; i < 2000; i++ {
		v := verbs[rng.Intn(len(verbs))]
		line := v
		if v != "undo" {
			line = fmt.Sprintf("%s %.2f", v, rng.Float64()*200)
		}
		s, _ = run(s, line)
		if b := s.State.Balances; b.Account < 0 || b.Savings < 0 {
			t.Fatalf("step %d %q left negative balances %+v", i, line, b)
		}
	}
}

func TestHashIsPartOfArguments(t *testing.T) {
	s, o := run(snapshot(100, 0), "spend 20 lunch #2 with team")
	if a := appended(o); len(a) != 1 || a[0].Note != "lunch #2 with team" {
		t.Fatalf("unexpected entries %+v", a)
	}
	if s.State.Balances.Account != 80 {
		t.Fatalf("unexpected balances %+v", s.State.Balances)
	}

	s, _ = run(s, "goal 500 Trip #1")
	if s.State.Goal != (core.Goal{Name: "Trip #1", Amount: 500}) {
		t.Fatalf("unexpected goal %+v", s.State.Goal)
	}

	s, o = run(s, "theme #Dark")
	if o.Err != nil || core.ThemeName(s.State.Theme) != "Dark" {
		t.Fatalf("theme name normalisation should ignore the hash, got %v %+v", o.Err, o.Messages)
	}
}

func TestOverflowIsRejected(t *testing.T) {
	s, _ := run(snapshot(0, 0), "add 1e308")
	if s.State.Balances.Account != 1e308 {
		t.Fatalf("unexpected balances %+v", s.State.Balances)
	}

	for _, line := range []string{"add 1e308", "back 1e308"} {
		start := s
		start.State.Balances.Savings = 1e308
		o := Execute(line, start, testNow)
		var ve *core.ValidationError
		if !errors.As(o.Err, &ve) || lastText(o) != "Amount is too large." {
			t.Fatalf("%q: expected overflow rejection, got %v %+v", line, o.Err, o.Messages)
		}
		if len(o.Effects) != 0 || o.State != start.State || len(o.Messages) != 1 {
			t.Fatalf("%q: overflow must not change anything: %+v", line, o)
		}
	}
}
