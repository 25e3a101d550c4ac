// Package sheets defines the spreadsheet export port and the row layout
// shared by its adapters.
package sheets

import (
	"context"

	"budgeter/internal/core"
)

// Header is the first row of an exported sheet.
var Header = []string{"timestamp", "action", "type", "amount", "note"}

// Row is one exported ledger record.
type Row struct {
	Timestamp string
	Action    string
	Type      core.Kind
	Amount    float64
	Note      string
}

// Values returns the row as spreadsheet cells, in Header order.
func (r Row) Values() []any {
	return []any{r.Timestamp, r.Action, string(r.Type), r.Amount, r.Note}
}

// NewRow builds the row for tx under the given action.
func NewRow(action string, tx core.Transaction) Row {
	return Row{Timestamp: tx.TS, Action: action, Type: tx.Type, Amount: tx.Amount, Note: tx.Note}
}

// LedgerRows maps a whole ledger to rows, all tagged with action.
func LedgerRows(action string, txns []core.Transaction) []Row {
	rows := make([]Row, 0, len(txns))
	for _, tx := range txns {
		rows = append(rows, NewRow(action, tx))
	}
	return rows
}

// Ports for outbound adapters.
type (
	// RowAppender adds rows after the last non-empty row of the sheet.
	RowAppender interface {
		AppendRows(ctx context.Context, rows []Row) error
	}

	// SheetReplacer clears the sheet and writes the header followed by rows.
	SheetReplacer interface {
		ReplaceRows(ctx context.Context, rows []Row) error
	}

	Exporter interface {
		RowAppender
		SheetReplacer
	}
)
