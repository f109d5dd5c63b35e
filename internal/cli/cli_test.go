package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"assetguard/internal/config"
	"assetguard/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() *config.Config {
	return &config.Config{
		Port:            "8081",
		Mode:            config.ModeDeployed,
		DataBackend:     "memory",
		DefaultBudget:   50000,
		RolloverEnabled: true,
		PriceCacheTTL:   time.Minute,
		AMQPExchange:    "assetguard",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestBootstrapMemoryBackend(t *testing.T) {
	ctx := context.Background()
	app, err := Bootstrap(ctx, quietLogger(), baseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.False(t, app.Offline())
	require.NoError(t, app.Ready(ctx))

	id, err := app.Ledger.AddExpense(ctx, core.NewDate(2025, time.January, 5), "coffee", 450)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	sum, err := app.Engine.ComputeSummary(ctx, core.NewMonth(2025, time.January), false)
	require.NoError(t, err)
	assert.Equal(t, int64(49550), sum.Remaining)

	prices, err := app.Market.Prices(ctx)
	require.NoError(t, err)
	for _, sl := range app.Projection.ShareLoss {
		q, ok := prices[sl.Symbol]
		require.True(t, ok, sl.Symbol)
		assert.Equal(t, core.SourceDefault, q.Source)
		assert.True(t, q.Price.IsPositive())
	}
}

func TestBootstrapSQLiteReady(t *testing.T) {
	cfg := baseConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "ledger.db")

	app, err := Bootstrap(context.Background(), quietLogger(), cfg)
	require.NoError(t, err)
	require.NoError(t, app.Ready(context.Background()))
	require.NoError(t, app.Close())
}

func TestBootstrapLocalModeStartsOffline(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := baseConfig()
	cfg.Mode = config.ModeLocal
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(blocker, "ledger.db")

	app, err := Bootstrap(context.Background(), quietLogger(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.True(t, app.Offline())
	err = app.Ready(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStorageUnavailable)
}

func TestBootstrapDeployedModeFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	cfg := baseConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(blocker, "ledger.db")

	_, err := Bootstrap(context.Background(), quietLogger(), cfg)
	require.Error(t, err)
}

func TestBootstrapBadCatalogue(t *testing.T) {
	cfg := baseConfig()
	cfg.InstrumentsFile = filepath.Join(t.TempDir(), "missing.toml")

	_, err := Bootstrap(context.Background(), quietLogger(), cfg)
	require.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ASSETGUARD_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("ASSETGUARD_TEST_VALUE", "")
	os.Unsetenv("ASSETGUARD_TEST_VALUE")

	LoadEnvFile(quietLogger(), path)
	assert.Equal(t, "from-file", os.Getenv("ASSETGUARD_TEST_VALUE"))

	// missing files are ignored
	LoadEnvFile(quietLogger(), filepath.Join(t.TempDir(), "nope.env"))
}

func TestLoadConfigValidates(t *testing.T) {
	t.Setenv("LEDGER_MODE", "staging")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("LEDGER_MODE", "local")
	t.Setenv("DATA_BACKEND", "memory")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Local())
}
