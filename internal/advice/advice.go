// Package advice talks to the budget advice collaborator: a text completion
// service that turns the current budget and an unrecognised command into a
// short piece of advice.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgeter/internal/core"
)

// Advisor completes a system prompt and a user message into advice text.
// Failures are returned as *core.UpstreamError and are never retried.
type Advisor interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ErrDisabled is the cause reported when no advisor is configured.
var ErrDisabled = errors.New("advice is not configured (set OPENAI_API_KEY)")

// Disabled is the advisor used without credentials.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", &core.UpstreamError{Op: "complete", Err: ErrDisabled}
}

// SystemPrompt frames the collaborator as a budget coach.
const SystemPrompt = `You are a financial advisor for teenagers.
Analyze their spending habits and provide helpful, non-judgmental advice.
Suggest ways to save money and make better spending decisions.
Keep your response under 4 sentences and focus on one key insight.`

// RecentLimit is how many of the latest transactions go into the prompt.
const RecentLimit = 10

// BudgetContext is what the collaborator is told about the user.
type BudgetContext struct {
	Balances core.Balances
	Settings core.Settings
	Goal     core.Goal
	Recent   []core.Transaction
	Command  string
}

// NewBudgetContext keeps only the last RecentLimit transactions of history.
func NewBudgetContext(b core.Balances, s core.Settings, g core.Goal, history []core.Transaction, command string) BudgetContext {
	recent := history
	if len(recent) > RecentLimit {
		recent = recent[len(recent)-RecentLimit:]
	}
	return BudgetContext{Balances: b, Settings: s, Goal: g, Recent: recent, Command: command}
}

// BudgetPrompt renders the user message for c.
func BudgetPrompt(c BudgetContext) string {
	var sb strings.Builder
	sb.WriteString("Here are the user's balances and budget:\n")
	fmt.Fprintf(&sb, "Account balance: %s\n", core.FormatMoney(c.Balances.Account))
	fmt.Fprintf(&sb, "Savings balance: %s\n", core.FormatMoney(c.Balances.Savings))
	fmt.Fprintf(&sb, "Auto-save: %s\n", core.FormatPercent(c.Settings.AutoSavePercent))
	if c.Goal.Amount > 0 {
		fmt.Fprintf(&sb, "Goal: %s (%s)\n", c.Goal.Name, core.FormatMoney(c.Goal.Amount))
	} else {
		sb.WriteString("Goal: none set\n")
	}
	if len(c.Recent) == 0 {
		sb.WriteString("Transactions: none\n")
	} else {
		sb.WriteString("Transactions:\n")
		for _, t := range c.Recent {
			fmt.Fprintf(&sb, "- %s %s %s", t.TS, t.Type, core.FormatMoney(t.Amount))
			if t.Note != "" {
				fmt.Fprintf(&sb, " (%s)", t.Note)
			}
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "\nLatest command: %s\n", c.Command)
	return sb.String()
}
