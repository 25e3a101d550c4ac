package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgeter/internal/amqp"
	"budgeter/internal/cli"
	"budgeter/internal/log"
	gsheet "budgeter/internal/sheets/google"
	"budgeter/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting budgeter-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	backendResult := cli.OpenStore(ctx, logger, cfg)
	defer backendResult.Cleanup()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	exportWorker := worker.NewExportWorker(backendResult.Store, sheetsClient, logger)

	// A full export on startup covers events missed while the worker was down.
	if n, err := exportWorker.ExportAll(ctx); err != nil {
		logger.ErrorContext(ctx, "Startup export failed", log.FieldOperation, log.OpStartup, log.FieldError, err)
	} else {
		logger.InfoContext(ctx, "Startup export completed", "rows", n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeLedgerEvents(gctx, exportWorker.HandleLedgerEvent)
	})
	g.Go(func() error {
		<-gctx.Done()
		amqpClient.Close()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	if ctx.Err() != nil {
		<-done
	}
	logger.Info("Worker shutdown complete")
}
