// Package runner executes one detection pass for a provider: lock, fetch, reconcile,
// announce, persist.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/wacksbywarby/wacks/internal/ledger"
	"github.com/wacksbywarby/wacks/internal/lock"
	"github.com/wacksbywarby/wacks/internal/model"
	"github.com/wacksbywarby/wacks/internal/provider"
	"github.com/wacksbywarby/wacks/internal/reconcile"
	"github.com/wacksbywarby/wacks/internal/store"
)

// ErrorSentinel prefixes top-level failure logs so external alerting can match them.
const ErrorSentinel = "WACK_ERROR"

// ErrUnsupportedSource is returned for a source that is neither an order nor an
// inventory provider.
var ErrUnsupportedSource = errors.New("unsupported provider source")

// Source is an order or inventory provider.
type Source interface {
	Name() string
}

// Announcer delivers sale announcements.
type Announcer interface {
	Announce(ctx context.Context, provider string, sales []model.Sale, total int) error
	Milestone(ctx context.Context, prev, total int) error
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Store      *store.Store
	Locker     lock.Locker
	Announcer  Announcer
	Ledger     ledger.Recorder // nil disables the ledger
	Reconciler *reconcile.Reconciler
}

// Options tune a Runner.
type Options struct {
	// Dry suppresses notifications, the count delay and all state writes.
	Dry bool
	// CountDelay is waited before reading an inventory provider's total, giving the shop
	// time to catch up with the sale.
	CountDelay time.Duration
}

// Runner runs detection passes.
type Runner struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Runner.
func New(deps Deps, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Ledger == nil {
		deps.Ledger = ledger.Nop{}
	}
	if deps.Reconciler == nil {
		deps.Reconciler = reconcile.New(reconcile.Options{}, logger)
	}
	return &Runner{
		deps:   deps,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		sleep:  sleep,
	}
}

// pass carries per-run context.
type pass struct {
	id     uuid.UUID
	name   string
	logger *slog.Logger
}

// Run executes one pass for src. A pass that cannot take the lock in time is skipped
// and reports nil.
func (r *Runner) Run(ctx context.Context, src Source) error {
	p := pass{id: uuid.New(), name: src.Name()}
	p.logger = r.logger.With("run_id", p.id.String(), "provider", p.name)
	p.logger.Info("time to wack", "dry", r.opts.Dry)

	if err := r.deps.Locker.Lock(ctx); err != nil {
		if errors.Is(err, lock.ErrLocked) {
			p.logger.Info("another run holds the lock, skipping")
			return nil
		}
		return errors.Wrap(err, "acquire lock")
	}
	defer func() {
		if err := r.deps.Locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warn("release lock failed", "error", err)
		}
	}()

	var err error
	switch s := src.(type) {
	case provider.OrderSource:
		_, err = r.runOrders(ctx, p, s)
	case provider.InventorySource:
		_, err = r.runInventory(ctx, p, s)
	default:
		err = errors.Wrapf(ErrUnsupportedSource, "%T", src)
	}
	if err != nil {
		return err
	}

	if r.opts.Dry {
		return nil
	}
	if err := r.deps.Store.WriteSuccess(); err != nil {
		return errors.Wrap(err, "write success")
	}
	p.logger.Info("run complete")
	return nil
}

func (r *Runner) runOrders(ctx context.Context, p pass, src provider.OrderSource) (reconcile.Result, error) {
	prev, err := r.deps.Store.ReadWatermark()
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "read watermark")
	}

	in := reconcile.OrderInput{Previous: prev}
	if !prev.HasTimestamp() {
		recent, err := src.RecentOrders(ctx)
		if err != nil {
			return reconcile.Result{}, errors.Wrap(err, "fetch recent orders")
		}
		in.Orders, in.Recent = recent, recent
	} else {
		in.Orders, err = src.OrdersSince(ctx, prev.Timestamp)
		if err != nil {
			return reconcile.Result{}, errors.Wrap(err, "fetch orders")
		}
		if prev.SaleCount <= 0 {
			in.Recent, err = src.RecentOrders(ctx)
			if err != nil {
				return reconcile.Result{}, errors.Wrap(err, "fetch recent orders")
			}
		}
	}

	res := r.deps.Reconciler.Orders(in)
	p.logger.Info("reconciled orders",
		"mode", res.Mode,
		"orders", len(in.Orders),
		"sales", len(res.Sales),
		"prev_num_sales", prev.SaleCount,
		"num_sales", res.Watermark.SaleCount,
	)

	if err := r.deliver(ctx, p, prev, res); err != nil {
		return res, err
	}
	if r.opts.Dry {
		return res, nil
	}
	if err := r.deps.Store.WriteWatermark(res.Watermark); err != nil {
		return res, errors.Wrap(err, "write watermark")
	}
	return res, nil
}

func (r *Runner) runInventory(ctx context.Context, p pass, src provider.InventorySource) (reconcile.Result, error) {
	prev, err := r.deps.Store.ReadWatermark()
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "read watermark")
	}
	prevSnap, err := r.deps.Store.ReadSnapshot()
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "read snapshot")
	}

	cur, err := src.Inventory(ctx)
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "fetch inventory")
	}
	diffs := reconcile.Diff(prevSnap, cur)
	if len(diffs) == 0 {
		p.logger.Info("no inventory changes")
		return reconcile.Result{Mode: reconcile.ModeInventory, Watermark: prev, Snapshot: cur}, nil
	}
	p.logger.Info("inventory changed", "diffs", len(diffs))

	if !r.opts.Dry && r.opts.CountDelay > 0 {
		if err := r.sleep(ctx, r.opts.CountDelay); err != nil {
			return reconcile.Result{}, err
		}
	}

	total, err := src.TotalSales(ctx)
	if err != nil {
		return reconcile.Result{}, errors.Wrap(err, "fetch total sales")
	}

	res := r.deps.Reconciler.Inventory(reconcile.InventoryInput{
		Previous:      prev,
		Snapshot:      cur,
		Diffs:         diffs,
		ReportedTotal: total,
	})
	p.logger.Info("reconciled inventory",
		"sales", len(res.Sales),
		"prev_num_sales", prev.SaleCount,
		"num_sales", total,
	)
	if len(res.Sales) > 0 && !res.Announce {
		p.logger.Info("num sales did not increase, skipping announcement",
			"prev_num_sales", prev.SaleCount, "num_sales", total)
	}

	if err := r.deliver(ctx, p, prev, res); err != nil {
		return res, err
	}
	if r.opts.Dry {
		return res, nil
	}
	if err := r.deps.Store.WriteSnapshot(cur); err != nil {
		return res, errors.Wrap(err, "write snapshot")
	}
	if err := r.deps.Store.WriteWatermark(res.Watermark); err != nil {
		return res, errors.Wrap(err, "write watermark")
	}
	return res, nil
}

// deliver announces res when it calls for it and records the sales in the ledger.
// Only the announcement can fail the pass.
func (r *Runner) deliver(ctx context.Context, p pass, prev model.Watermark, res reconcile.Result) error {
	if !res.Announce {
		return nil
	}
	total := res.Watermark.SaleCount

	if r.opts.Dry {
		p.logger.Info("dry run, not announcing", "sales", len(res.Sales), "num_sales", total)
		return nil
	}

	if err := r.deps.Announcer.Announce(ctx, p.name, res.Sales, total); err != nil {
		return errors.Wrap(err, "announce sales")
	}
	if err := r.deps.Announcer.Milestone(ctx, prev.SaleCount, total); err != nil {
		p.logger.Warn("milestone message failed", "error", err)
	}

	entries := ledger.NewEntries(p.id, p.name, total, res.Sales, r.now().UTC())
	n, err := r.deps.Ledger.Record(ctx, entries)
	if err != nil {
		p.logger.Warn("ledger record failed", "entries", len(entries), "error", err)
		return nil
	}
	p.logger.Debug("ledger recorded", "new", n, "entries", len(entries))
	return nil
}

// LogFailure logs a top-level failure once, with the alerting sentinel and the error's
// stack.
func LogFailure(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(ErrorSentinel, "error", err.Error(), "detail", fmt.Sprintf("%+v", err))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
