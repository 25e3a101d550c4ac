package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Storage
	DataBackend  string
	DataDir      string
	SQLiteDBPath string

	// AMQP (empty URL disables ledger events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Advice collaborator
	OpenAIAPIKey   string
	AdviceModel    string
	AdviceBaseURL  string
	AdviceTimeout  time.Duration
	AdviceCacheTTL time.Duration

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "files"),
		DataDir:      getEnv("DATA_DIR", "pages"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budgeter.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgeter"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		AdviceModel:    getEnv("ADVICE_MODEL", "gpt-4o"),
		AdviceBaseURL:  getEnv("ADVICE_BASE_URL", ""),
		AdviceTimeout:  getEnvDuration("ADVICE_TIMEOUT", 15*time.Second),
		AdviceCacheTTL: getEnvDuration("ADVICE_CACHE_TTL", 5*time.Minute),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

var (
	validBackends  = []string{"files", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(validBackends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "files":
		if strings.TrimSpace(c.DataDir) == "" {
			problems = append(problems, "data directory cannot be empty when using files backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AdviceBaseURL != "" {
		if u, err := url.Parse(c.AdviceBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("invalid advice base URL '%s': must be an http(s) URL", c.AdviceBaseURL))
		}
	}
	if strings.TrimSpace(c.AdviceModel) == "" {
		problems = append(problems, "advice model cannot be empty")
	}
	if c.AdviceTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("invalid advice timeout %v: must be at least 1 second", c.AdviceTimeout))
	} else if c.AdviceTimeout > 2*time.Minute {
		problems = append(problems, fmt.Sprintf("invalid advice timeout %v: must be at most 2 minutes", c.AdviceTimeout))
	}
	if c.AdviceCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid advice cache TTL %v: must not be negative", c.AdviceCacheTTL))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateExport checks the settings needed by the sheet export, which only
// the worker and the admin export use.
func (c *Config) ValidateExport() error {
	var problems []string
	if c.GoogleSpreadsheetID == "" {
		problems = append(problems, "Google Spreadsheet ID is required for the sheet export")
	}
	if c.GoogleSheetName == "" {
		problems = append(problems, "Google Sheet name is required for the sheet export")
	}
	if len(problems) > 0 {
		return fmt.Errorf("export configuration invalid:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// AdviceEnabled reports whether an API key is configured.
func (c *Config) AdviceEnabled() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
