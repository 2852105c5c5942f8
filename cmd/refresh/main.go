package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wacksbywarby/wacks/internal/app"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/runner"
	"github.com/wacksbywarby/wacks/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/wack.yaml", "path to config file")
	providerName := flag.String("provider", "", "provider whose token to refresh (etsy or square)")
	force := flag.Bool("force", false, "refresh even when the token is not close to expiry")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath, *providerName)
	if err != nil {
		runner.LogFailure(app.NewLogger(os.Stdout, config.DefaultLogLevel), err)
		os.Exit(1)
	}

	logger := app.NewLogger(os.Stdout, cfg.Log.Level)
	logger.Info("starting refresh", append(version.Attrs(), "provider", cfg.Provider)...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refreshed, err := app.RefreshCredentials(ctx, cfg, app.NewStore(cfg, logger), *force, time.Now(), logger)
	if err != nil {
		runner.LogFailure(logger, err)
		os.Exit(1)
	}
	logger.Info("refresh complete", "refreshed", refreshed)
}
