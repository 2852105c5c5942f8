package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wacksbywarby/wacks/internal/app"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/runner"
	"github.com/wacksbywarby/wacks/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/wack.yaml", "path to config file")
	providerName := flag.String("provider", "", "provider to check; overrides the config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath, *providerName)
	if err != nil {
		runner.LogFailure(app.NewLogger(os.Stdout, config.DefaultLogLevel), err)
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stdout, cfg.Log.Level)
	logger.Info("starting health check", append(version.Attrs(), "provider", cfg.Provider)...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := app.NewRun(ctx, cfg, true, logger)
	if err != nil {
		runner.LogFailure(logger, err)
		os.Exit(1)
	}
	defer run.Close()

	status := fmt.Sprintf("wack health check succeeded (%s)", cfg.Provider)
	runErr := run.Runner.Run(ctx, run.Source)
	if runErr != nil {
		logger.Error("healthcheck error", "error", runErr)
		status = fmt.Sprintf("Error occurred during wack health check (%s): %v", cfg.Provider, runErr)
	}

	if err := run.Notifier.Healthcheck(ctx, status); err != nil {
		logger.Error("send healthcheck message", "error", err)
	}
	if runErr != nil {
		run.Close()
		os.Exit(1)
	}
	logger.Info("healthcheck successful")
}
