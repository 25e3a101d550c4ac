package services

import (
	"context"
	"fmt"

	"budgeter/internal/budget"
	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/store"
)

// WipePhrase must be typed to confirm WipeAll.
const WipePhrase = "DELETE EVERYTHING"

// Status is the dashboard view of the current state.
type Status struct {
	Balances core.Balances
	Goal     core.Goal
	// GoalPercent is the truncated percent of the goal reached; it is only
	// meaningful when GoalSet.
	GoalPercent     int
	GoalSet         bool
	GoalReached     bool
	AutoSavePercent float64
	ThemeName       string
}

func (s *BudgetService) Status() Status {
	st := s.State()
	out := Status{
		Balances:        st.Balances,
		Goal:            st.Goal,
		AutoSavePercent: st.Settings.AutoSavePercent,
		ThemeName:       core.ThemeName(st.Theme),
	}
	if frac, ok := st.Goal.Progress(st.Balances.Savings); ok {
		out.GoalSet = true
		out.GoalPercent = int(frac * 100)
		out.GoalReached = out.GoalPercent >= 100
	}
	return out
}

// RemoveGoal deletes the stored goal; the goal returns to the default.
func (s *BudgetService) RemoveGoal(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteGoal(ctx); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.state.Goal = core.DefaultGoal()
	s.log.InfoContext(ctx, "Removed goal", log.FieldOperation, log.OpReset)
	return nil
}

// ResetData removes balances, goal, settings and the ledger. The theme is
// kept and zero balances are saved.
func (s *BudgetService) ResetData(ctx context.Context) error {
	return s.reset(ctx, store.ScopeData)
}

// WipeAll removes everything including the theme.
func (s *BudgetService) WipeAll(ctx context.Context) error {
	return s.reset(ctx, store.ScopeAll)
}

func (s *BudgetService) reset(ctx context.Context, scope store.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx, scope); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := s.store.SaveBalances(ctx, core.Balances{}); err != nil {
		return fmt.Errorf("save zero balances: %w", err)
	}

	next := budget.State{Goal: core.DefaultGoal(), Theme: s.state.Theme}
	if scope == store.ScopeAll {
		next.Theme = core.DefaultTheme()
	}
	s.state = next
	s.log.InfoContext(ctx, "Reset data", log.FieldOperation, log.OpReset, "wipe_all", scope == store.ScopeAll)
	return nil
}
