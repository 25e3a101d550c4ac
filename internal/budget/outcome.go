package budget

import (
	"time"

	"budgeter/internal/core"
	"budgeter/internal/report"
)

// State is everything a command can read or change besides the ledger.
type State struct {
	Balances core.Balances
	Goal     core.Goal
	Settings core.Settings
	Theme    core.Theme
}

// Snapshot is the input of one command.
type Snapshot struct {
	State   State
	History []core.Transaction
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Message is one line of user-facing feedback.
type Message struct {
	Level Level
	Text  string
}

// Effect is a side effect the caller must commit, in order, for the
// outcome's State to become current.
type Effect interface {
	effect()
}

type (
	// AppendEntry records a new ledger entry stamped at commit time.
	AppendEntry struct {
		Kind   core.Kind
		Amount float64
		Note   string
	}

	SaveBalances struct{ Balances core.Balances }
	SaveGoal     struct{ Goal core.Goal }
	SaveSettings struct{ Settings core.Settings }
	SaveTheme    struct{ Theme core.Theme }

	// RewriteLedger replaces the ledger with Entries after Undone was popped.
	RewriteLedger struct {
		Entries []core.Transaction
		Undone  core.Transaction
	}

	// JournalCommand appends an unrecognised line to the journal.
	JournalCommand struct {
		Line string
		At   time.Time
	}

	// RequestAdvice forwards the raw command to the advice collaborator.
	RequestAdvice struct{ Command string }
)

func (AppendEntry) effect()    {}
func (SaveBalances) effect()   {}
func (SaveGoal) effect()       {}
func (SaveSettings) effect()   {}
func (SaveTheme) effect()      {}
func (RewriteLedger) effect()  {}
func (JournalCommand) effect() {}
func (RequestAdvice) effect()  {}

// Outcome is the transition produced by one command. When Err is set,
// State equals the input state and Effects is empty.
type Outcome struct {
	Verb     Verb
	State    State
	Effects  []Effect
	Messages []Message
	Report   *report.Report
	// Refresh asks the caller to redraw everything (theme change, undo).
	Refresh bool
	Err     error
}

func (o *Outcome) say(level Level, text string) {
	o.Messages = append(o.Messages, Message{Level: level, Text: text})
}

func (o *Outcome) emit(e ...Effect) {
	o.Effects = append(o.Effects, e...)
}
