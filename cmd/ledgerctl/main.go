package main

import (
	"context"
	"fmt"
	"os"

	"assetguard/internal/cli"
	"assetguard/internal/ctl"
)

func main() {
	// Commands print their own output; the logger only carries warnings.
	logger := cli.SetupLogger("warn", "text")
	cli.LoadEnvFile(logger)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	root := ctl.NewRootCmd(func(ctx context.Context) (*ctl.Deps, func() error, error) {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		app, err := cli.Bootstrap(ctx, logger, cfg)
		if err != nil {
			return nil, nil, err
		}
		return &ctl.Deps{
			Ledger:     app.Ledger,
			Engine:     app.Engine,
			Prices:     app.Market,
			Projection: app.Projection,
			Rollover:   cfg.RolloverEnabled,
			Offline:    app.Offline(),
		}, app.Close, nil
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(ctl.ExitCode(err))
	}
}
