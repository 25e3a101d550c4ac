// Package store defines the persistence ports of the budgeter and the
// tagged load result every adapter returns.
package store

import (
	"context"
	"time"

	"budgeter/internal/core"
)

// Source tells whether a value came from storage or is the documented default.
type Source int

const (
	SourceDefault Source = iota
	SourceLoaded
)

func (s Source) String() string {
	if s == SourceLoaded {
		return "loaded"
	}
	return "defaulted"
}

// Loaded is the result of a load that never fails. When Source is
// SourceDefault, Err holds the reason (nil when nothing was stored yet).
// A loaded ledger may still carry Err listing the records that were skipped.
type Loaded[T any] struct {
	Value  T
	Source Source
	Err    error
}

func (l Loaded[T]) Defaulted() bool {
	return l.Source == SourceDefault
}

// Defaulted builds a default result.
func Defaulted[T any](v T, err error) Loaded[T] {
	return Loaded[T]{Value: v, Source: SourceDefault, Err: err}
}

// Found builds a loaded result.
func Found[T any](v T) Loaded[T] {
	return Loaded[T]{Value: v, Source: SourceLoaded}
}

// Scope selects what a reset removes.
type Scope int

const (
	// ScopeData removes balances, goal, settings and the ledger. Theme is kept.
	ScopeData Scope = iota
	// ScopeAll also removes the theme.
	ScopeAll
)

type (
	StateStore interface {
		LoadBalances(ctx context.Context) Loaded[core.Balances]
		SaveBalances(ctx context.Context, b core.Balances) error
		LoadGoal(ctx context.Context) Loaded[core.Goal]
		SaveGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context) error
		LoadSettings(ctx context.Context) Loaded[core.Settings]
		SaveSettings(ctx context.Context, s core.Settings) error
		LoadTheme(ctx context.Context) Loaded[core.Theme]
		SaveTheme(ctx context.Context, t core.Theme) error
	}

	// TransactionLog is the append-only ledger. Rewrite replaces it whole and
	// is used only by undo and resets.
	TransactionLog interface {
		AppendTransaction(ctx context.Context, t core.Transaction) error
		LoadTransactions(ctx context.Context) Loaded[[]core.Transaction]
		RewriteTransactions(ctx context.Context, txns []core.Transaction) error
	}

	// CommandJournal records commands the interpreter did not recognise.
	CommandJournal interface {
		RecordUnknownCommand(ctx context.Context, at time.Time, line string) error
	}

	Resetter interface {
		Reset(ctx context.Context, scope Scope) error
	}

	Store interface {
		StateStore
		TransactionLog
		CommandJournal
		Resetter
		Close() error
	}
)
