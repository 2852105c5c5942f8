// Package app wires configuration into the clients, stores and runner used by the
// commands.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/auth"
	"github.com/wacksbywarby/wacks/internal/catalog"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/ledger"
	"github.com/wacksbywarby/wacks/internal/lock"
	"github.com/wacksbywarby/wacks/internal/notify"
	"github.com/wacksbywarby/wacks/internal/provider/etsy"
	"github.com/wacksbywarby/wacks/internal/provider/shift4shop"
	"github.com/wacksbywarby/wacks/internal/provider/square"
	"github.com/wacksbywarby/wacks/internal/reconcile"
	"github.com/wacksbywarby/wacks/internal/runner"
	"github.com/wacksbywarby/wacks/internal/store"
)

// ErrNoCredentials is returned when a provider's OAuth credentials file is missing.
var ErrNoCredentials = errors.New("no stored credentials")

// ParseLevel maps a log.level value to a slog level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the given level and installs it as the
// default logger.
func NewLogger(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// TimestampLayout returns the watermark layout the provider's API speaks.
func TimestampLayout(provider string) string {
	switch provider {
	case config.ProviderShift4Shop:
		return shift4shop.Layout
	case config.ProviderSquare:
		return square.Layout
	}
	return time.RFC3339
}

// NewStore opens the flat-file state for the configured provider.
func NewStore(cfg *config.Config, logger *slog.Logger) *store.Store {
	return store.New(cfg.StateDir, TimestampLayout(cfg.Provider), logger)
}

// NewSource builds the client for the configured provider. OAuth providers read their
// access token from the store.
func NewSource(cfg *config.Config, st *store.Store, logger *slog.Logger) (runner.Source, error) {
	switch cfg.Provider {
	case config.ProviderEtsy:
		var creds auth.EtsyCredentials
		if err := readCreds(st, store.EtsyCredsFile, &creds); err != nil {
			return nil, err
		}
		return etsy.New(cfg.Etsy, cfg.API, creds.AccessToken, logger), nil
	case config.ProviderSquare:
		var creds auth.SquareCredentials
		if err := readCreds(st, store.SquareCredsFile, &creds); err != nil {
			return nil, err
		}
		return square.New(cfg.Square, cfg.API, creds.AccessToken, logger), nil
	case config.ProviderShift4Shop:
		return shift4shop.New(cfg.Shift4Shop, cfg.API, logger), nil
	default:
		return nil, errors.Newf("unknown provider %q", cfg.Provider)
	}
}

func readCreds(st *store.Store, name string, v any) error {
	err := st.ReadJSON(name, v)
	if errors.Is(err, store.ErrNotFound) {
		return errors.Mark(errors.Wrapf(err, "missing %s", st.Path(name)), ErrNoCredentials)
	}
	return err
}

// Run is a runner together with the resources it holds.
type Run struct {
	Runner   *runner.Runner
	Source   runner.Source
	Notifier *notify.Notifier
	ledger   ledger.Recorder
}

// Close releases the ledger connection.
func (r *Run) Close() {
	if err := r.ledger.Close(); err != nil {
		slog.Warn("close ledger", "error", err)
	}
}

// NewRun builds everything one detection pass needs.
func NewRun(ctx context.Context, cfg *config.Config, dry bool, logger *slog.Logger) (*Run, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st := NewStore(cfg, logger)

	src, err := NewSource(cfg, st, logger)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	logger.Debug("catalog loaded", "path", cfg.CatalogPath, "entries", cat.Len())

	locker, err := lock.New(cfg.Lock, lock.Key(cfg.Instance.Name, cfg.Provider), logger)
	if err != nil {
		return nil, err
	}

	rec, err := ledger.Open(ctx, cfg.Ledger, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open ledger")
	}

	notifier := notify.New(cfg.Notify, cfg.API, cat, dry, logger)

	var delay time.Duration
	if cfg.Provider == config.ProviderEtsy {
		delay = cfg.Etsy.CountDelay
	}

	r := runner.New(runner.Deps{
		Store:      st,
		Locker:     locker,
		Announcer:  notifier,
		Ledger:     rec,
		Reconciler: reconcile.New(reconcile.Options{CountUnits: cfg.Reconcile.CountUnits}, logger),
	}, runner.Options{Dry: dry, CountDelay: delay}, logger)

	return &Run{Runner: r, Source: src, Notifier: notifier, ledger: rec}, nil
}
