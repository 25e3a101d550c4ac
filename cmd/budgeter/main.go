package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"budgeter/internal/cli"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

// Exit codes: 1 when a write failed, 2 when the command itself was rejected.
const (
	exitFailure  = 1
	exitRejected = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendResult := cli.OpenStore(ctx, logger, cfg)
	defer backendResult.Cleanup()

	publisher, closePublisher := cli.NewPublisher(cfg, logger)
	if closePublisher != nil {
		defer closePublisher()
	}

	svc := services.NewBudgetService(ctx, backendResult.Store, cli.NewAdvisor(cfg, logger), cli.ServiceOptions(logger, publisher)...)

	if len(os.Args) > 1 {
		return runOnce(ctx, svc, cli.JoinArgs(os.Args[1:]), os.Stdout)
	}
	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	return runLoop(ctx, svc, os.Stdin, os.Stdout, interactive)
}

func runOnce(ctx context.Context, svc *services.BudgetService, line string, out io.Writer) int {
	o, err := svc.Run(ctx, line)
	cli.RenderOutcome(out, o)
	switch {
	case err != nil:
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitFailure
	case o.Err != nil:
		return exitRejected
	}
	return 0
}

// runLoop runs one command per input line. When interactive it prompts,
// redraws the status after a refresh, and stops on exit or quit.
func runLoop(ctx context.Context, svc *services.BudgetService, in io.Reader, out io.Writer, interactive bool) int {
	if interactive {
		fmt.Fprintln(out, "Budgeter. Type help for commands, exit to quit.")
		cli.RenderStatus(out, svc.Status())
	}

	code := 0
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if trimmed == "" {
			continue
		}
		if interactive && (trimmed == "exit" || trimmed == "quit") {
			break
		}

		o, err := svc.Run(ctx, line)
		cli.RenderOutcome(out, o)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			code = exitFailure
			if errors.Is(err, context.Canceled) {
				break
			}
			continue
		}
		if interactive && o.Refresh {
			cli.RenderStatus(out, svc.Status())
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "error: read input:", err)
		return exitFailure
	}
	return code
}
