package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Mode decides how storage failures reach the user.
type Mode string

const (
	// ModeLocal degrades an unreachable store to an empty read-only view with a warning.
	ModeLocal Mode = "local"
	// ModeDeployed surfaces storage failures and blocks the action.
	ModeDeployed Mode = "deployed"
)

// Config is read from the environment. Field names map to the variables in
// the `envconfig` tags; no prefix is used.
type Config struct {
	// HTTP Server
	Port string `envconfig:"PORT" default:"8081"`

	Mode Mode `envconfig:"LEDGER_MODE" default:"deployed"`

	// Backend selection
	DataBackend  string `envconfig:"DATA_BACKEND" default:"sqlite"`
	SQLiteDBPath string `envconfig:"SQLITE_DB_PATH" default:"./data/ledger.db"`

	// Google Sheets
	GoogleSpreadsheetID        string `envconfig:"GOOGLE_SPREADSHEET_ID"`
	GoogleExpensesSheet        string `envconfig:"GOOGLE_EXPENSES_SHEET" default:"Expenses"`
	GoogleBudgetsSheet         string `envconfig:"GOOGLE_BUDGETS_SHEET" default:"Budgets"`
	GoogleServiceAccountJSON   string `envconfig:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile   string `envconfig:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleApplicationCredsFile string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Ledger
	DefaultBudget   int64 `envconfig:"DEFAULT_BUDGET" default:"50000"`
	RolloverEnabled bool  `envconfig:"ROLLOVER_ENABLED" default:"true"`

	// Market prices
	MarketBaseURL string        `envconfig:"MARKET_BASE_URL" default:"https://query1.finance.yahoo.com"`
	MarketTimeout time.Duration `envconfig:"MARKET_TIMEOUT" default:"5s"`
	PriceCacheTTL time.Duration `envconfig:"PRICE_CACHE_TTL" default:"1m"`

	// AMQP (optional)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"assetguard"`

	InstrumentsFile string `envconfig:"INSTRUMENTS_FILE"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the environment into a Config. Malformed values (e.g. a non-numeric
// DEFAULT_BUDGET) are reported here; semantic checks are left to Validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	cfg.DataBackend = strings.ToLower(strings.TrimSpace(cfg.DataBackend))
	return &cfg, nil
}

// Local reports whether storage failures should degrade to the offline view.
func (c *Config) Local() bool {
	return c.Mode == ModeLocal
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// GoogleCredentials returns the service-account JSON, inline value first, then the file paths.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if s := strings.TrimSpace(c.GoogleServiceAccountJSON); s != "" {
		return []byte(s), nil
	}
	path := strings.TrimSpace(c.GoogleServiceAccountFile)
	if path == "" {
		path = strings.TrimSpace(c.GoogleApplicationCredsFile)
	}
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Mode != ModeLocal && c.Mode != ModeDeployed {
		errors = append(errors, fmt.Sprintf("invalid ledger mode '%s': must be 'local' or 'deployed'", c.Mode))
	}

	validBackends := []string{"memory", "sheets", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleExpensesSheet == "" || c.GoogleBudgetsSheet == "" {
			errors = append(errors, "Google expenses and budgets sheet names cannot be empty")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" && c.GoogleApplicationCredsFile == "" {
			errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets backend")
		}
		if f := c.GoogleServiceAccountFile; f != "" {
			if _, err := os.Stat(f); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", f))
			}
		}
	}

	if c.DefaultBudget < 0 {
		errors = append(errors, fmt.Sprintf("invalid default budget %d: must not be negative", c.DefaultBudget))
	}

	if c.MarketBaseURL != "" {
		if u, err := url.Parse(c.MarketBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid market base URL '%s': must be http or https", c.MarketBaseURL))
		}
	}
	if c.MarketTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid market timeout %v: must be positive", c.MarketTimeout))
	}
	if c.PriceCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid price cache TTL %v: must not be negative", c.PriceCacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
