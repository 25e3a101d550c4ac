// Package cli provides the initialization and output helpers shared by
// cmd/budgeter, cmd/budgeter-admin and cmd/budgeter-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgeter/internal/advice"
	"budgeter/internal/amqp"
	"budgeter/internal/backend"
	"budgeter/internal/config"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

// adviceCacheSize bounds the number of cached prompts.
const adviceCacheSize = 64

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger logs to stderr at the given level and installs the logger
// as the slog default.
func SetupLogger(level string, component string) *log.Logger {
	logger := log.New(log.Config{Level: log.ParseLevel(level), Component: component})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the configured persistence backend or exits.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, log.FieldBackend, bcfg.Type)
		os.Exit(1)
	}
	return result
}

// NewAdvisor returns the OpenAI-backed advisor, cached when a TTL is set,
// or advice.Disabled without an API key.
func NewAdvisor(cfg *config.Config, logger *log.Logger) advice.Advisor {
	if !cfg.AdviceEnabled() {
		logger.Info("Advice disabled - no OPENAI_API_KEY provided")
		return advice.Disabled{}
	}
	client := advice.NewClient(advice.Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.AdviceModel,
		BaseURL: cfg.AdviceBaseURL,
		Timeout: cfg.AdviceTimeout,
	})
	return advice.NewCached(client, adviceCacheSize, cfg.AdviceCacheTTL)
}

// NewPublisher connects to AMQP when configured. Both results are nil when
// events are disabled. A broker that cannot be reached disables events
// for this run instead of failing the command.
func NewPublisher(cfg *config.Config, logger *log.Logger) (services.EventPublisher, func()) {
	if cfg.AMQPURL == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Ledger events disabled, AMQP unavailable", "error", err)
		return nil, nil
	}
	return client, func() { client.Close() }
}

// ServiceOptions returns the service options for the shared logger and
// an optional publisher.
func ServiceOptions(logger *log.Logger, publisher services.EventPublisher) []services.Option {
	opts := []services.Option{services.WithLogger(logger)}
	if publisher != nil {
		opts = append(opts, services.WithPublisher(publisher))
	}
	return opts
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Debug("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
