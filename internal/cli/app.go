package cli

import (
	"context"
	"fmt"
	"log/slog"

	"assetguard/internal/backend"
	"assetguard/internal/config"
	"assetguard/internal/engine"
	applog "assetguard/internal/log"
	"assetguard/internal/market"
	"assetguard/internal/services"

	goption "google.golang.org/api/option"
)

// App is the wired ledger stack.
type App struct {
	Config     *config.Config
	Catalogue  config.Catalogue
	Backend    *backend.BackendResult
	Ledger     *services.LedgerService
	Engine     *engine.Engine
	Market     *market.Service
	Projection engine.ProjectionConfig
}

// Bootstrap builds store, engine, price source and ledger service from cfg.
// sheetsOpts are passed to the spreadsheet client (endpoint overrides in tests).
func Bootstrap(ctx context.Context, logger *slog.Logger, cfg *config.Config, sheetsOpts ...goption.ClientOption) (*App, error) {
	cat, err := config.LoadCatalogue(cfg.InstrumentsFile)
	if err != nil {
		return nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend config: %w", err)
	}
	res, err := backend.NewFactory(applog.WithComponent(logger, applog.ComponentBackend), sheetsOpts...).
		CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", backendCfg.Type, err)
	}

	publisher, _ := backend.NewPublisher(applog.WithComponent(logger, applog.ComponentAMQP), cfg.AMQPURL, cfg.AMQPExchange)

	var fetcher market.Fetcher = market.StaticFetcher{}
	if cfg.MarketBaseURL != "" {
		fetcher = market.NewYahooClient(cfg.MarketBaseURL, cfg.MarketTimeout)
	}

	app := &App{
		Config:     cfg,
		Catalogue:  cat,
		Backend:    res,
		Ledger:     services.NewLedgerService(res.Store, publisher),
		Engine:     engine.New(res.Store),
		Market:     market.NewService(fetcher, cat.Listings(), cat.Rate(), cfg.PriceCacheTTL),
		Projection: cat.ProjectionConfig(),
	}
	logger.InfoContext(ctx, "Ledger stack ready",
		applog.FieldBackend, backendCfg.Type.String(),
		"mode", string(cfg.Mode),
		"offline", res.Offline,
		"instruments", len(cat.Instruments),
		"events", publisher != nil)
	return app, nil
}

// Offline reports whether the store is the empty read-only fallback.
func (a *App) Offline() bool {
	return a.Backend != nil && a.Backend.Offline
}

// Ready pings the store when it supports it.
func (a *App) Ready(ctx context.Context) error {
	if a.Offline() {
		return fmt.Errorf("ledger offline: %w", a.Backend.Cause)
	}
	if p, ok := a.Backend.Store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the store and the event publisher.
func (a *App) Close() error {
	return a.Ledger.Close()
}
