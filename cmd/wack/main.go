package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/wacksbywarby/wacks/internal/app"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/poller"
	"github.com/wacksbywarby/wacks/internal/runner"
	"github.com/wacksbywarby/wacks/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/wack.yaml", "path to config file")
	providers := flag.String("provider", "", "comma-separated providers to run (etsy, square, shift4shop); overrides the config file")
	dry := flag.Bool("dry", false, "log announcements instead of sending them and persist nothing")
	interval := flag.Duration("interval", 0, "keep running, one pass per provider every interval (0 runs once)")
	flag.Parse()

	names := strings.Split(*providers, ",")
	cfgs := make([]*config.Config, 0, len(names))
	for _, name := range names {
		cfg, err := config.LoadAndValidate(*configPath, strings.TrimSpace(name))
		if err != nil {
			runner.LogFailure(app.NewLogger(os.Stdout, config.DefaultLogLevel), err)
			os.Exit(1)
		}
		cfgs = append(cfgs, cfg)
	}

	logger := app.NewLogger(os.Stdout, cfgs[0].Log.Level)
	logger.Info("starting wack", append(version.Attrs(),
		"config", *configPath,
		"providers", len(cfgs),
		"interval", *interval,
	)...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		failed := false
		for _, cfg := range cfgs {
			if err := runOnce(ctx, cfg, *dry, logger); err != nil {
				runner.LogFailure(logger.With("provider", cfg.Provider), err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	passes := make([]poller.Pass, 0, len(cfgs))
	for _, cfg := range cfgs {
		passes = append(passes, poller.PassFunc{
			ID: cfg.Provider,
			Fn: func(ctx context.Context) error { return runOnce(ctx, cfg, *dry, logger) },
		})
	}

	pcfg := poller.DefaultConfig()
	pcfg.Interval = *interval
	pcfg.Concurrency = len(passes)
	p := poller.New(pcfg, passes, func(name string, err error) {
		runner.LogFailure(logger.With("provider", name), err)
	}, logger)

	if err := p.Start(ctx); err != nil {
		runner.LogFailure(logger, err)
		os.Exit(1)
	}
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Error("poller stop", "error", err)
	}
}

// runOnce builds fresh clients so rotated credentials are picked up between passes.
func runOnce(ctx context.Context, cfg *config.Config, dry bool, logger *slog.Logger) error {
	run, err := app.NewRun(ctx, cfg, dry, logger)
	if err != nil {
		return err
	}
	defer run.Close()
	return run.Runner.Run(ctx, run.Source)
}
