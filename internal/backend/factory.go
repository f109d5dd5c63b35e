package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"assetguard/internal/amqp"
	"assetguard/internal/core"
	gsheet "assetguard/internal/ledger/google"
	"assetguard/internal/ledger/memory"
	"assetguard/internal/services"
	"assetguard/internal/storage"

	goption "google.golang.org/api/option"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger     *slog.Logger
	sheetsOpts []goption.ClientOption
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger, sheetsOpts ...goption.ClientOption) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger, sheetsOpts: sheetsOpts}
}

// CreateBackend builds the configured store. In local mode a storage failure
// yields the empty read-only store instead of an error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err == nil {
		return res, nil
	}

	if config.Local && errors.Is(err, core.ErrStorageUnavailable) {
		f.logger.WarnContext(ctx, "Ledger backend unreachable, running with empty read-only ledger",
			"backend", config.Type.String(),
			"error", err)
		return &BackendResult{
			Store:   memory.NewReadOnly(config.DefaultBudget),
			Offline: true,
			Cause:   err,
		}, nil
	}
	return nil, err
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.DefaultBudget)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		ExpensesSheet:   config.GoogleExpensesSheet,
		BudgetsSheet:    config.GoogleBudgetsSheet,
		DefaultBudget:   config.DefaultBudget,
		CredentialsJSON: config.GoogleCredentialsJSON,
	}, f.sheetsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)
	return &BackendResult{Store: store}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized memory backend", "default_budget", config.DefaultBudget)
	return &BackendResult{Store: memory.New(config.DefaultBudget)}, nil
}

// NewPublisher connects the optional ledger event publisher. A broker that cannot be
// reached is logged and events are disabled; it never blocks startup.
func NewPublisher(logger *slog.Logger, url, exchange string) (services.Publisher, CleanupFunc) {
	if url == "" {
		return nil, nil
	}
	client, err := amqp.NewClient(url, exchange)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		return nil, nil
	}
	logger.Info("Initialized AMQP client", "exchange", exchange)
	return client, client.Close
}
