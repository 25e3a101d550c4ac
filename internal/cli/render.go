package cli

import (
	"fmt"
	"io"
	"strings"

	"budgeter/internal/budget"
	"budgeter/internal/core"
	"budgeter/internal/report"
	"budgeter/internal/services"
)

var levelPrefix = map[budget.Level]string{
	budget.LevelInfo:    "",
	budget.LevelSuccess: "ok: ",
	budget.LevelWarning: "warning: ",
	budget.LevelError:   "error: ",
}

// RenderOutcome prints the messages of o and its report, if any.
func RenderOutcome(w io.Writer, o budget.Outcome) {
	for _, m := range o.Messages {
		fmt.Fprintln(w, levelPrefix[m.Level]+m.Text)
	}
	if o.Report != nil {
		RenderReport(w, *o.Report)
	}
}

// RenderReport prints the windowed totals and the composition of funds.
func RenderReport(w io.Writer, r report.Report) {
	if r.Count > 0 {
		title := "Report (" + r.Range.Name
		if !r.Since.IsZero() {
			title += ", since " + r.Since.Format("2006-01-02 15:04")
		}
		fmt.Fprintln(w, title+")")
		for _, c := range r.Totals.Categories() {
			fmt.Fprintf(w, "  %-11s %s\n", c.Name, core.FormatMoney(c.Amount))
		}
	}

	fmt.Fprintln(w, "Money composition")
	if r.Composition.Empty() {
		fmt.Fprintln(w, "  No money to show yet.")
		return
	}
	shares := r.Composition.Shares()
	parts := []core.CategoryAmount{
		{Name: "Account", Amount: r.Composition.Account},
		{Name: "Savings", Amount: r.Composition.Savings},
		{Name: "Spent", Amount: r.Composition.Spent},
	}
	for i, p := range parts {
		fmt.Fprintf(w, "  %-11s %s (%s)\n", p.Name, core.FormatMoney(p.Amount), core.FormatPercent(shares[i]))
	}
}

// RenderStatus prints the dashboard view.
func RenderStatus(w io.Writer, st services.Status) {
	fmt.Fprintf(w, "Account:   %s\n", core.FormatMoney(st.Balances.Account))
	fmt.Fprintf(w, "Savings:   %s\n", core.FormatMoney(st.Balances.Savings))
	fmt.Fprintf(w, "Auto-save: %s\n", core.FormatPercent(st.AutoSavePercent))
	fmt.Fprintf(w, "Theme:     %s\n", st.ThemeName)

	if !st.GoalSet {
		fmt.Fprintln(w, "Set a savings goal to see your progress.")
		return
	}
	fmt.Fprintf(w, "Goal:      %d%% of '%s' (%s / %s)\n", st.GoalPercent, st.Goal.Name,
		core.FormatMoney(st.Balances.Savings), core.FormatMoney(st.Goal.Amount))
	if st.GoalReached {
		fmt.Fprintln(w, "Goal reached!")
	}
}

// JoinArgs rebuilds a command line from process arguments, quoting the
// ones that would otherwise split differently.
func JoinArgs(args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'\\") {
			out[i] = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(a) + `"`
			continue
		}
		out[i] = a
	}
	return strings.Join(out, " ")
}
