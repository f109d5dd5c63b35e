package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"assetguard/internal/cli"
	apphttp "assetguard/internal/http"
	applog "assetguard/internal/log"
	"assetguard/internal/middleware/ratelimit"
)

func main() {
	logger := cli.SetupLogger("info", "text")
	cli.LoadEnvFile(logger)

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(logger, "Invalid configuration", err)
	}
	logger = cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.Bootstrap(ctx, logger, cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize ledger", err)
	}

	srv, err := apphttp.NewServer(cfg.Addr(), apphttp.Options{
		Ledger:        app.Ledger,
		Engine:        app.Engine,
		Prices:        app.Market,
		Projection:    app.Projection,
		Rollover:      cfg.RolloverEnabled,
		DefaultBudget: cfg.DefaultBudget,
		Local:         cfg.Local(),
		Offline:       app.Offline(),
		Ready:         app.Ready,
		Logger:        logger,
		RateLimit:     ratelimit.DefaultConfig(),
	})
	if err != nil {
		_ = app.Close()
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting assetguard server",
			"addr", srv.Addr,
			applog.FieldBackend, cfg.DataBackend,
			"mode", string(cfg.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
	}
	if err := app.Close(); err != nil {
		logger.Error("Failed to release ledger", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
