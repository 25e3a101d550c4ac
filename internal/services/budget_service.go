// Package services holds the budgeter's application service: the current
// state between commands and the commit of each command's effects.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"budgeter/internal/advice"
	"budgeter/internal/amqp"
	"budgeter/internal/budget"
	"budgeter/internal/core"
	"budgeter/internal/ledger"
	"budgeter/internal/log"
	"budgeter/internal/store"
)

// EventPublisher receives committed ledger changes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// BudgetService runs commands one at a time against persisted state.
type BudgetService struct {
	store     store.Store
	ledger    *ledger.Ledger
	advisor   advice.Advisor
	publisher EventPublisher
	log       *log.Logger
	now       func() time.Time

	mu    sync.Mutex
	state budget.State
}

type Option func(*BudgetService)

// WithPublisher enables ledger events. A nil publisher disables them.
func WithPublisher(p EventPublisher) Option {
	return func(s *BudgetService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *BudgetService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *BudgetService) { s.log = l }
}

// NewBudgetService loads the current state from st. Loads never fail;
// anything that falls back to a default is logged.
func NewBudgetService(ctx context.Context, st store.Store, advisor advice.Advisor, opts ...Option) *BudgetService {
	s := &BudgetService{store: st, advisor: advisor, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.New(log.DefaultConfig())
	}
	s.log = s.log.WithComponent(log.ComponentBudget)
	if s.advisor == nil {
		s.advisor = advice.Disabled{}
	}
	s.ledger = ledger.New(st, s.now)
	s.state = s.loadState(ctx)
	return s
}

func (s *BudgetService) loadState(ctx context.Context) budget.State {
	b := s.store.LoadBalances(ctx)
	g := s.store.LoadGoal(ctx)
	st := s.store.LoadSettings(ctx)
	th := s.store.LoadTheme(ctx)
	warnDefaulted(ctx, s.log, "balances", b.Err)
	warnDefaulted(ctx, s.log, "goal", g.Err)
	warnDefaulted(ctx, s.log, "settings", st.Err)
	warnDefaulted(ctx, s.log, "theme", th.Err)
	return budget.State{Balances: b.Value, Goal: g.Value, Settings: st.Value, Theme: th.Value}
}

func warnDefaulted(ctx context.Context, l *log.Logger, what string, err error) {
	if err == nil {
		return
	}
	l.WarnContext(ctx, "Using default "+what, log.FieldOperation, log.OpLoad, log.FieldError, err)
}

// State returns the state as of the last committed command.
func (s *BudgetService) State() budget.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run interprets line and commits its effects in order. User-level
// problems are reported in the outcome's Messages and Err; the returned
// error is set only when committing failed, in which case the in-memory
// state is left unchanged.
func (s *BudgetService) Run(ctx context.Context, line string) (budget.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.ledger.History(ctx)
	if history.Err != nil {
		s.log.WarnContext(ctx, "Ledger loaded with problems", log.FieldOperation, log.OpLoad, log.FieldError, history.Err)
	}

	o := budget.Execute(line, budget.Snapshot{State: s.state, History: history.Value}, s.now())
	s.log.DebugContext(ctx, "Executed command", log.FieldVerb, o.Verb.String(), "effects", len(o.Effects))
	if o.Err != nil {
		return o, nil
	}

	var events []*amqp.LedgerEvent
	for _, e := range o.Effects {
		ev, err := s.commit(ctx, &o, e, history.Value)
		if err != nil {
			log.LogError(ctx, "Failed to commit command", err, log.ComponentBudget, log.OpSave,
				log.NewFields().WithBalances(s.state.Balances.Account, s.state.Balances.Savings))
			return o, err
		}
		if ev != nil {
			events = append(events, ev)
		}
	}

	s.state = o.State
	for _, ev := range events {
		s.publish(ctx, ev)
	}
	return o, nil
}

func (s *BudgetService) commit(ctx context.Context, o *budget.Outcome, e budget.Effect, history []core.Transaction) (*amqp.LedgerEvent, error) {
	switch e := e.(type) {
	case budget.AppendEntry:
		tx, ok, err := s.ledger.Append(ctx, e.Kind, e.Amount, e.Note)
		if err != nil || !ok {
			return nil, err
		}
		s.log.InfoContext(ctx, "Appended transaction", log.FieldKind, tx.Type, log.FieldAmount, tx.Amount)
		return amqp.NewLedgerEvent(amqp.ActionAppended, tx, s.now()), nil
	case budget.SaveBalances:
		return nil, s.store.SaveBalances(ctx, e.Balances)
	case budget.SaveGoal:
		return nil, s.store.SaveGoal(ctx, e.Goal)
	case budget.SaveSettings:
		return nil, s.store.SaveSettings(ctx, e.Settings)
	case budget.SaveTheme:
		return nil, s.store.SaveTheme(ctx, e.Theme)
	case budget.RewriteLedger:
		if err := s.store.RewriteTransactions(ctx, e.Entries); err != nil {
			return nil, fmt.Errorf("rewrite ledger: %w", err)
		}
		s.log.InfoContext(ctx, "Undid transaction", log.FieldOperation, log.OpUndo,
			log.FieldKind, e.Undone.Type, log.FieldAmount, e.Undone.Amount)
		return amqp.NewLedgerEvent(amqp.ActionUndone, e.Undone, s.now()), nil
	case budget.JournalCommand:
		return nil, s.store.RecordUnknownCommand(ctx, e.At, e.Line)
	case budget.RequestAdvice:
		s.advise(ctx, o, e.Command, history)
		return nil, nil
	default:
		return nil, fmt.Errorf("unhandled effect %T", e)
	}
}

// advise asks the collaborator about command. A failure is a user-level
// error: it is reported in o and never retried.
func (s *BudgetService) advise(ctx context.Context, o *budget.Outcome, command string, history []core.Transaction) {
	bc := advice.NewBudgetContext(o.State.Balances, o.State.Settings, o.State.Goal, history, command)
	start := time.Now()
	text, err := s.advisor.Complete(ctx, advice.SystemPrompt, advice.BudgetPrompt(bc))
	if err != nil {
		var ue *core.UpstreamError
		if !errors.As(err, &ue) {
			err = &core.UpstreamError{Op: "complete", Err: err}
		}
		log.LogError(ctx, "Advice request failed", err, log.ComponentAdvice, log.OpAdvise, nil)
		o.Err = err
		o.Messages = append(o.Messages, budget.Message{Level: budget.LevelError, Text: "Could not reach Budget Buddy: " + err.Error()})
		return
	}
	s.log.DebugContext(ctx, "Advice received", log.FieldDuration, time.Since(start).Milliseconds())

	text = strings.TrimSpace(text)
	if text == "" {
		text = "(no advice)"
	}
	o.Messages = append(o.Messages, budget.Message{Level: budget.LevelInfo, Text: "Feedback: " + text})
}

// publish never fails the command; the worker can be resynced with a
// full export.
func (s *BudgetService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			"action", ev.Action,
			log.FieldError, err)
	}
}
