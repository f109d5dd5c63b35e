package backend

import (
	"fmt"

	"assetguard/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Local enables the offline fallback when the backend cannot be reached.
	Local         bool
	DefaultBudget int64

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID   string
	GoogleExpensesSheet   string
	GoogleBudgetsSheet    string
	GoogleCredentialsJSON []byte
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	cfg := Config{
		Type:          backendType,
		Local:         appConfig.Local(),
		DefaultBudget: appConfig.DefaultBudget,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleExpensesSheet: appConfig.GoogleExpensesSheet,
		GoogleBudgetsSheet:  appConfig.GoogleBudgetsSheet,
	}
	if backendType == SheetsBackend {
		creds, err := appConfig.GoogleCredentials()
		if err != nil {
			return Config{}, err
		}
		cfg.GoogleCredentialsJSON = creds
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.DefaultBudget < 0 {
		return fmt.Errorf("default budget must not be negative")
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
