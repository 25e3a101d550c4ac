// Package budget interprets Budgeter command lines.
//
// Execute is a pure transition: it reads a snapshot of the current state and
// returns the new state together with the side effects that must be
// committed for it to hold. Nothing is written here.
package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/ledger"
	"budgeter/internal/report"
)

type command struct {
	verb   Verb
	line   string
	tokens []string
	now    time.Time
}

type handler func(c command, s Snapshot, o *Outcome)

// handlers must have an entry for every verb; see TestHandlerTableIsTotal.
var handlers = [verbCount]handler{
	VerbUnknown:     handleUnknown,
	VerbAdd:         handleAdd,
	VerbSave:        handleSave,
	VerbSpend:       handleSpend,
	VerbBack:        handleBack,
	VerbGoal:        handleGoal,
	VerbAutosave:    handleAutosave,
	VerbTheme:       handleTheme,
	VerbDeleteMoney: handleDeleteMoney,
	VerbReport:      handleReport,
	VerbUndo:        handleUndo,
	VerbHelp:        handleHelp,
}

// Execute runs one command line against s at time now.
func Execute(line string, s Snapshot, now time.Time) Outcome {
	o := Outcome{State: s.State}

	tokens, err := Tokenize(line)
	if err != nil {
		level, text := LevelError, err.Error()
		var pe *core.ParseError
		if errors.As(err, &pe) {
			text = pe.Reason
			if pe.Reason == msgBlank {
				level = LevelWarning
			}
		}
		o.fail(level, err, text)
		return o
	}

	c := command{verb: Resolve(tokens), line: line, tokens: tokens, now: now}
	o.Verb = c.verb
	handlers[c.verb](c, s, &o)

	// A transition that overflows a balance cannot be persisted.
	if o.Err == nil && !o.State.Balances.Finite() {
		o.Messages = nil
		o.invalid(c, "Amount is too large.")
	}

	if o.Err != nil {
		o.State = s.State
		o.Effects = nil
		o.Refresh = false
	}
	return o
}

// fail records a user-level error and its message.
func (o *Outcome) fail(level Level, err error, text string) {
	o.Err = err
	o.say(level, text)
}

func (o *Outcome) invalid(c command, text string) {
	o.fail(LevelError, &core.ValidationError{Command: c.verb.String(), Message: text}, text)
}

// amount parses the numeric argument at tokens[i].
func (c command) amount(i int) (float64, string, bool) {
	if len(c.tokens) <= i {
		return 0, "Missing amount.", false
	}
	v, err := core.ParseAmount(c.tokens[i])
	if err != nil {
		return 0, "Amount must be a number.", false
	}
	return v, "", true
}

// positive parses tokens[i] and requires it to be greater than zero.
func (c command) positive(i int, o *Outcome) (float64, bool) {
	v, msg, ok := c.amount(i)
	if !ok {
		o.invalid(c, msg)
		return 0, false
	}
	if v <= 0 {
		o.invalid(c, "Amount must be greater than zero.")
		return 0, false
	}
	return v, true
}

// rest joins the tokens from i on with single spaces.
func (c command) rest(i int) string {
	if len(c.tokens) <= i {
		return ""
	}
	return strings.Join(c.tokens[i:], " ")
}

func handleAdd(c command, s Snapshot, o *Outcome) {
	amt, ok := c.positive(1, o)
	if !ok {
		return
	}
	b := s.State.Balances
	b.Account += amt
	o.emit(AppendEntry{Kind: core.KindAdd, Amount: amt})

	pct := core.ClampPercent(s.State.Settings.AutoSavePercent)
	if auto := core.Round2(amt * pct / 100); auto > 0 {
		auto = min(auto, b.Account)
		b.Account -= auto
		b.Savings += auto
		o.emit(AppendEntry{Kind: core.KindAutoMoveToSavings, Amount: auto})
		o.say(LevelInfo, fmt.Sprintf("Auto-saved %s (%s) from this deposit.", core.FormatPercent(pct), core.FormatMoney(auto)))
	}

	o.State.Balances = b
	o.emit(SaveBalances{Balances: b})
	o.say(LevelSuccess, fmt.Sprintf("Added %s. Account: %s", core.FormatMoney(amt), core.FormatMoney(b.Account)))
}

func handleSave(c command, s Snapshot, o *Outcome) {
	amt, ok := c.positive(1, o)
	if !ok {
		return
	}
	b := s.State.Balances
	amt = min(amt, b.Account)
	if amt <= 0 {
		o.say(LevelWarning, "No available balance to move.")
		return
	}
	b.Account -= amt
	b.Savings += amt
	o.State.Balances = b
	o.emit(AppendEntry{Kind: core.KindMoveToSavings, Amount: amt, Note: c.rest(2)}, SaveBalances{Balances: b})
	o.say(LevelSuccess, fmt.Sprintf("Saved %s.", core.FormatMoney(amt)))
}

func handleSpend(c command, s Snapshot, o *Outcome) {
	amt, ok := c.positive(1, o)
	if !ok {
		return
	}
	b := s.State.Balances
	amt = min(amt, b.Account)
	if amt <= 0 {
		o.say(LevelWarning, "No available balance to spend.")
		return
	}
	b.Account -= amt
	o.State.Balances = b
	o.emit(AppendEntry{Kind: core.KindSpend, Amount: amt, Note: c.rest(2)}, SaveBalances{Balances: b})
	o.say(LevelSuccess, fmt.Sprintf("Spent %s.", core.FormatMoney(amt)))
}

func handleBack(c command, s Snapshot, o *Outcome) {
	amt, ok := c.positive(1, o)
	if !ok {
		return
	}
	b := s.State.Balances
	amt = min(amt, b.Savings)
	if amt <= 0 {
		o.say(LevelWarning, "No savings available to move back.")
		return
	}
	b.Savings -= amt
	b.Account += amt
	o.State.Balances = b
	o.emit(AppendEntry{Kind: core.KindMoveToAccount, Amount: amt, Note: c.rest(2)}, SaveBalances{Balances: b})
	o.say(LevelSuccess, fmt.Sprintf("Moved back %s to account.", core.FormatMoney(amt)))
}

func handleGoal(c command, s Snapshot, o *Outcome) {
	amt, msg, ok := c.amount(1)
	if !ok {
		o.invalid(c, msg)
		return
	}
	if amt < 0 {
		o.invalid(c, "Goal amount cannot be negative.")
		return
	}
	name := c.rest(2)
	if strings.TrimSpace(name) == "" {
		name = s.State.Goal.Name
	}
	g := core.Goal{Name: name, Amount: amt}.Normalize()
	o.State.Goal = g
	o.emit(SaveGoal{Goal: g})
	o.say(LevelSuccess, fmt.Sprintf("Goal set: %s (%s)", g.Name, core.FormatMoney(g.Amount)))
}

func handleAutosave(c command, _ Snapshot, o *Outcome) {
	pct, msg, ok := c.amount(1)
	if !ok {
		o.invalid(c, msg)
		return
	}
	if pct < 0 {
		o.invalid(c, "Percent cannot be negative.")
		return
	}
	st := core.Settings{AutoSavePercent: core.ClampPercent(pct)}
	o.State.Settings = st
	o.emit(SaveSettings{Settings: st})
	o.say(LevelSuccess, fmt.Sprintf("Auto-save set to %s of each deposit.", core.FormatPercent(st.AutoSavePercent)))
}

func handleTheme(c command, _ Snapshot, o *Outcome) {
	want := c.rest(1)
	if strings.TrimSpace(want) == "" {
		o.invalid(c, "Usage: theme THEME_NAME")
		return
	}
	preset, ok := core.MatchTheme(want)
	if !ok {
		o.invalid(c, "Unknown theme. Available: "+strings.Join(core.PaletteNames(), ", "))
		return
	}
	o.State.Theme = preset.Theme
	o.emit(SaveTheme{Theme: preset.Theme})
	o.Refresh = true
	o.say(LevelSuccess, fmt.Sprintf("Theme set to %q.", preset.Name))
}

func handleDeleteMoney(c command, s Snapshot, o *Outcome) {
	b := s.State.Balances
	target := ""
	if len(c.tokens) >= 3 {
		target = lower(c.tokens[2])
	}

	switch target {
	case "account", "acc", "a":
		if len(c.tokens) < 4 {
			o.invalid(c, "Usage: delete money account AMOUNT")
			return
		}
		amt, ok := c.positive(3, o)
		if !ok {
			return
		}
		amt = min(amt, b.Account)
		b.Account -= amt
		o.say(LevelSuccess, fmt.Sprintf("Deleted %s from Account balance.", core.FormatMoney(amt)))
	case "savings", "sav", "s":
		if len(c.tokens) < 4 {
			o.invalid(c, "Usage: delete money savings AMOUNT")
			return
		}
		amt, ok := c.positive(3, o)
		if !ok {
			return
		}
		amt = min(amt, b.Savings)
		b.Savings -= amt
		o.say(LevelSuccess, fmt.Sprintf("Deleted %s from Savings balance.", core.FormatMoney(amt)))
	case "all", "both":
		b = core.Balances{}
		o.say(LevelSuccess, "Deleted all money from Account and Savings (history retained).")
	default:
		// Not an error: a bare or unknown target just shows the forms.
		o.say(LevelInfo, deleteUsage)
		return
	}

	// No ledger entry: history is retained while the balance shrinks.
	o.State.Balances = b
	o.emit(SaveBalances{Balances: b})
}

func handleReport(c command, s Snapshot, o *Outcome) {
	token := ""
	if len(c.tokens) > 1 {
		token = c.tokens[1]
	}
	r, ok := report.ParseRange(token)
	if !ok {
		o.invalid(c, fmt.Sprintf("Unknown range %q. Use one of: %s", token, strings.Join(report.RangeTokens(), ", ")))
		return
	}
	rep := report.Build(r, s.History, s.State.Balances, c.now)
	o.Report = &rep
	if rep.Count == 0 {
		o.say(LevelInfo, "No transactions found for this range yet.")
	}
}

func handleUndo(_ command, s Snapshot, o *Outcome) {
	plan, err := ledger.PlanUndo(s.History, s.State.Balances)
	switch {
	case errors.Is(err, core.ErrNothingToUndo):
		o.fail(LevelWarning, err, "No transactions to undo.")
		return
	case err != nil:
		o.fail(LevelError, err, "Cannot undo this transaction type.")
		return
	}
	o.State.Balances = plan.Balances
	o.emit(RewriteLedger{Entries: plan.Remaining, Undone: plan.Undone}, SaveBalances{Balances: plan.Balances})
	o.Refresh = true
	o.say(LevelSuccess, fmt.Sprintf("Undid last transaction: %s %s", plan.Undone.Type, core.FormatMoney(plan.Undone.Amount)))
}

func handleHelp(_ command, _ Snapshot, o *Outcome) {
	o.say(LevelInfo, helpText)
}

// handleUnknown journals the raw line and hands it to the advisor. The
// advice text itself is produced by the caller.
func handleUnknown(c command, _ Snapshot, o *Outcome) {
	o.emit(JournalCommand{Line: c.line, At: c.now}, RequestAdvice{Command: c.line})
}
