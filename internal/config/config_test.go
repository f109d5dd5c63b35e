package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assetguard/internal/core"
)

func validConfig() Config {
	return Config{
		Port:          "8081",
		Mode:          ModeDeployed,
		DataBackend:   "sqlite",
		SQLiteDBPath:  "./test.db",
		DefaultBudget: 50000,
		MarketBaseURL: "https://query1.finance.yahoo.com",
		MarketTimeout: 5 * time.Second,
		PriceCacheTTL: time.Minute,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{name: "valid sqlite backend config", mutate: func(*Config) {}},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid mode",
			mutate:      func(c *Config) { c.Mode = "staging" },
			wantErr:     true,
			errorString: "invalid ledger mode 'staging'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "invalid backend",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			wantErr:     true,
			errorString: "invalid data backend 'postgres'",
		},
		{
			name: "sheets without credentials",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleExpensesSheet = "Expenses"
				c.GoogleBudgetsSheet = "Budgets"
			},
			wantErr:     true,
			errorString: "GOOGLE_SERVICE_ACCOUNT_JSON",
		},
		{
			name: "sheets with inline credentials",
			mutate: func(c *Config) {
				c.DataBackend = "sheets"
				c.GoogleSpreadsheetID = "abc"
				c.GoogleExpensesSheet = "Expenses"
				c.GoogleBudgetsSheet = "Budgets"
				c.GoogleServiceAccountJSON = `{"type":"service_account"}`
			},
		},
		{
			name:        "negative default budget",
			mutate:      func(c *Config) { c.DefaultBudget = -1 },
			wantErr:     true,
			errorString: "invalid default budget -1",
		},
		{
			name:        "bad amqp scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost"; c.AMQPExchange = "x" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "bad market url",
			mutate:      func(c *Config) { c.MarketBaseURL = "ftp://example.com" },
			wantErr:     true,
			errorString: "invalid market base URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("expected error containing %q, got %v", tt.errorString, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.DataBackend = "nope"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), "configuration validation failed:") || strings.Count(err.Error(), "\n- ") != 2 {
		t.Fatalf("expected two collected errors, got %q", err.Error())
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "LEDGER_MODE", "DATA_BACKEND", "DEFAULT_BUDGET", "ROLLOVER_ENABLED", "PRICE_CACHE_TTL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" || cfg.Mode != ModeDeployed || cfg.DataBackend != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultBudget != 50000 || !cfg.RolloverEnabled || cfg.PriceCacheTTL != time.Minute {
		t.Fatalf("unexpected ledger defaults: %+v", cfg)
	}
	if cfg.Local() {
		t.Fatal("deployed mode must not be local")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LEDGER_MODE", "LOCAL")
	t.Setenv("DATA_BACKEND", "Memory")
	t.Setenv("DEFAULT_BUDGET", "70000")
	t.Setenv("ROLLOVER_ENABLED", "false")
	t.Setenv("MARKET_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Local() || cfg.DataBackend != "memory" {
		t.Fatalf("unexpected mode/backend: %+v", cfg)
	}
	if cfg.DefaultBudget != 70000 || cfg.RolloverEnabled || cfg.MarketTimeout != 2*time.Second {
		t.Fatalf("unexpected values: %+v", cfg)
	}
}

func TestLoad_MalformedNumber(t *testing.T) {
	t.Setenv("DEFAULT_BUDGET", "lots")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric DEFAULT_BUDGET")
	}
}

func TestGoogleCredentials(t *testing.T) {
	cfg := validConfig()
	if b, err := cfg.GoogleCredentials(); err != nil || b != nil {
		t.Fatalf("expected no credentials, got %q (err=%v)", b, err)
	}

	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.GoogleServiceAccountFile = path
	b, err := cfg.GoogleCredentials()
	if err != nil || !strings.Contains(string(b), "service_account") {
		t.Fatalf("expected file credentials, got %q (err=%v)", b, err)
	}

	cfg.GoogleServiceAccountJSON = `{"inline":true}`
	b, _ = cfg.GoogleCredentials()
	if string(b) != `{"inline":true}` {
		t.Fatalf("inline JSON must win, got %q", b)
	}
}

func TestLoadCatalogue(t *testing.T) {
	cat, err := LoadCatalogue("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cat.ExchangeRate != 150 || len(cat.Instruments) != 4 || cat.Income != "O" {
		t.Fatalf("unexpected defaults %+v", cat)
	}
	pc := cat.ProjectionConfig()
	if len(pc.ShareLoss) != 3 || pc.Income.Symbol != "O" || len(pc.Horizons) != 4 {
		t.Fatalf("unexpected projection config %+v", pc)
	}

	path := filepath.Join(t.TempDir(), "instruments.toml")
	content := `
exchange_rate = 140.0
horizons = [10]

[[instrument]]
symbol = "VT"
name = "Vanguard Total World"
default_price = 110.0
share_loss = true

[[instrument]]
symbol = "O"
default_price = 53.0
annual_yield = 0.055
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err = LoadCatalogue(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.ExchangeRate != 140 || cat.GrowthRate != 0.15 || len(cat.Horizons) != 1 {
		t.Fatalf("expected file values merged over defaults, got %+v", cat)
	}
	listings := cat.Listings()
	if len(listings) != 2 || listings[0].Symbol != "VT" || listings[0].DefaultPrice.String() != "110" {
		t.Fatalf("unexpected listings %+v", listings)
	}
	if cat.Rate().String() != "140" {
		t.Fatalf("unexpected rate %s", cat.Rate())
	}
}

func TestLoadCatalogueRejectsZeroPrice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	content := "[[instrument]]\nsymbol = \"PLTR\"\ndefault_price = 0.0\nshare_loss = true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadCatalogue(path)
	if !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
