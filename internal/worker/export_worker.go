// Package worker mirrors the ledger to a spreadsheet.
package worker

import (
	"context"
	"fmt"

	"budgeter/internal/amqp"
	"budgeter/internal/log"
	"budgeter/internal/sheets"
	"budgeter/internal/store"
)

// ExportAction tags the rows written by a full export.
const ExportAction = "exported"

// ExportWorker handles ledger events from AMQP and full exports.
type ExportWorker struct {
	ledger   store.TransactionLog
	exporter sheets.Exporter
	log      *log.Logger
}

func NewExportWorker(ledger store.TransactionLog, exporter sheets.Exporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		ledger:   ledger,
		exporter: exporter,
		log:      logger.WithComponent(log.ComponentWorker),
	}
}

// HandleLedgerEvent appends one row for the event.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	row := sheets.NewRow(ev.Action, ev.Transaction)
	if err := w.exporter.AppendRows(ctx, []sheets.Row{row}); err != nil {
		return fmt.Errorf("append %s event: %w", ev.Action, err)
	}
	w.log.InfoContext(ctx, "Exported ledger event",
		"action", ev.Action,
		log.FieldKind, ev.Transaction.Type,
		log.FieldAmount, ev.Transaction.Amount)
	return nil
}

// ExportAll replaces the sheet with the whole ledger and returns the
// number of rows written. A ledger that could not be read is never
// exported, so a read failure cannot empty the sheet.
func (w *ExportWorker) ExportAll(ctx context.Context) (int, error) {
	loaded := w.ledger.LoadTransactions(ctx)
	if loaded.Defaulted() && loaded.Err != nil {
		return 0, fmt.Errorf("load ledger: %w", loaded.Err)
	}
	if loaded.Err != nil {
		w.log.WarnContext(ctx, "Exporting ledger with skipped records",
			log.FieldOperation, log.OpExport,
			log.FieldError, loaded.Err)
	}

	rows := sheets.LedgerRows(ExportAction, loaded.Value)
	if err := w.exporter.ReplaceRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("replace sheet: %w", err)
	}
	w.log.InfoContext(ctx, "Exported ledger", log.FieldOperation, log.OpExport, "rows", len(rows))
	return len(rows), nil
}
