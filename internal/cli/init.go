// Package cli holds the start-up steps shared by cmd/assetguard and cmd/ledgerctl:
// env loading, logger setup, config validation and wiring of the ledger stack.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"assetguard/internal/config"
	applog "assetguard/internal/log"

	"github.com/joho/godotenv"
)

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(level, format string) *slog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Format = format
	logger := applog.New(cfg)
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env (or the given files) for local development.
// A missing file is normal in production and is ignored.
func LoadEnvFile(logger *slog.Logger, paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load env file", applog.FieldError, err)
	}
}

// LoadConfig reads and validates the environment configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Fatal logs err and exits with status 1.
func Fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, applog.FieldError, fmt.Sprint(err))
	os.Exit(1)
}
