package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/app"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/provider"
	"github.com/wacksbywarby/wacks/internal/runner"
	"github.com/wacksbywarby/wacks/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/wack.yaml", "path to config file")
	providerName := flag.String("provider", "", "provider to list; overrides the config file")
	writeInventory := flag.Bool("write-inventory", false, "store the current inventory snapshot without announcing (etsy)")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath, *providerName)
	if err != nil {
		runner.LogFailure(app.NewLogger(os.Stderr, config.DefaultLogLevel), err)
		os.Exit(1)
	}
	// Logs go to stderr so the listing can be piped.
	logger := app.NewLogger(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := app.NewStore(cfg, logger)
	src, err := app.NewSource(cfg, st, logger)
	if err != nil {
		runner.LogFailure(logger, err)
		os.Exit(1)
	}

	if *writeInventory {
		inv, ok := src.(provider.InventorySource)
		if !ok {
			runner.LogFailure(logger, errors.Newf("provider %s has no inventory snapshot", cfg.Provider))
			os.Exit(1)
		}
		snap, err := inv.Inventory(ctx)
		if err == nil {
			err = st.WriteSnapshot(snap)
		}
		if err != nil {
			runner.LogFailure(logger, err)
			os.Exit(1)
		}
		logger.Info("wrote inventory snapshot", "items", len(snap), "path", st.Path(store.SnapshotFile))
		return
	}

	lister, ok := src.(provider.Lister)
	if !ok {
		runner.LogFailure(logger, errors.Newf("provider %s cannot list its catalog", cfg.Provider))
		os.Exit(1)
	}
	items, err := lister.ListCatalog(ctx)
	if err != nil {
		runner.LogFailure(logger, err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQUANTITY")
	for _, it := range items {
		qty := "-"
		if it.Quantity != nil {
			qty = fmt.Sprint(*it.Quantity)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.ID, it.Name, qty)
	}
	w.Flush()
}
