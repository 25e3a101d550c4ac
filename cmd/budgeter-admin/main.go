package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"budgeter/internal/cli"
	"budgeter/internal/config"
	"budgeter/internal/log"
	"budgeter/internal/services"
	"budgeter/internal/sheets/google"
	"budgeter/internal/store"
	"budgeter/internal/worker"
)

const usage = `usage: budgeter-admin COMMAND

Commands:
  status        show balances, goal progress, auto-save and theme
  remove-goal   delete the savings goal
  reset-data    delete balances, goal, settings and history (theme kept)
  wipe-all      delete everything, asks for confirmation
  export        replace the Google Sheet with the whole ledger`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentAdmin)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendResult := cli.OpenStore(ctx, logger, cfg)
	defer backendResult.Cleanup()

	svc := services.NewBudgetService(ctx, backendResult.Store, nil, services.WithLogger(logger))

	var err error
	switch args[0] {
	case "status":
		cli.RenderStatus(os.Stdout, svc.Status())
	case "remove-goal":
		if err = svc.RemoveGoal(ctx); err == nil {
			fmt.Println("Savings goal removed.")
		}
	case "reset-data":
		if err = svc.ResetData(ctx); err == nil {
			fmt.Println("Data wiped.")
		}
	case "wipe-all":
		err = wipeAll(ctx, svc, os.Stdin, os.Stdout)
	case "export":
		err = export(ctx, logger, cfg, backendResult.Store)
	default:
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}
	if err != nil {
		logger.ErrorContext(ctx, "Admin command failed", log.FieldCommand, args[0], log.FieldError, err)
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// wipeAll asks for the wipe phrase and a one-time unlock code.
func wipeAll(ctx context.Context, svc *services.BudgetService, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "This will permanently delete ALL balances, goal, settings, theme and your entire transaction history. This cannot be undone.")

	code, err := unlockCode()
	if err != nil {
		return err
	}
	r := bufio.NewReader(in)
	prompt := isatty.IsTerminal(os.Stdin.Fd())

	phrase := ask(r, out, prompt, fmt.Sprintf("Type EXACTLY %q: ", services.WipePhrase))
	typed := ask(r, out, prompt, fmt.Sprintf("Enter unlock code %s: ", code))
	if phrase != services.WipePhrase || typed != code {
		return fmt.Errorf("confirmation did not match, nothing was deleted")
	}

	if err := svc.WipeAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "All data wiped.")
	return nil
}

func ask(r *bufio.Reader, out io.Writer, prompt bool, question string) string {
	if prompt {
		fmt.Fprint(out, question)
	}
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func unlockCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("generate unlock code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func export(ctx context.Context, logger *log.Logger, cfg *config.Config, st store.Store) error {
	if err := cfg.ValidateExport(); err != nil {
		return err
	}
	client, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return err
	}

	n, err := worker.NewExportWorker(st, client, logger).ExportAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s.\n", n, cfg.GoogleSheetName)
	return nil
}
