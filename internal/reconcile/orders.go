package reconcile

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/wacksbywarby/wacks/internal/model"
)

// Mode identifies how the sale count was derived.
type Mode string

const (
	ModeBootstrap   Mode = "bootstrap"
	ModeBackfill    Mode = "backfill"
	ModeIncremental Mode = "incremental"
	ModeInventory   Mode = "inventory"
)

// Options configures a Reconciler.
type Options struct {
	// CountUnits counts sold units instead of line items in incremental mode.
	CountUnits bool
}

// Reconciler computes new sales and watermarks.
type Reconciler struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Reconciler.
func New(opts Options, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{opts: opts, logger: logger}
}

// OrderInput is one pass of an order provider.
type OrderInput struct {
	Previous model.Watermark
	// Orders is everything the provider returned since Previous.Timestamp.
	Orders []model.Order
	// Recent is the bounded recount window used when no count is stored.
	// Nil falls back to Orders.
	Recent []model.Order
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Mode      Mode
	Sales     []model.Sale
	Watermark model.Watermark
	// Announce is set when Sales should be delivered.
	Announce bool
	// Diffs and Snapshot are only set on the inventory path.
	Diffs    []model.InventoryDiff
	Snapshot model.InventorySnapshot
}

// Orders reconciles an order provider's result set against the previous watermark.
func (r *Reconciler) Orders(in OrderInput) Result {
	prev := in.Previous
	orders := Dedupe(in.Orders)

	latest := prev.Timestamp
	var fresh []model.Order
	for _, o := range orders {
		if o.OccurredAt.After(latest) {
			latest = o.OccurredAt
		}
		// Orders at or before the stored timestamp were seen by an earlier run.
		if prev.HasTimestamp() && !o.OccurredAt.After(prev.Timestamp) {
			continue
		}
		fresh = append(fresh, o)
	}

	sales := Sales(fresh)

	recent := in.Recent
	if recent == nil {
		recent = orders
	}

	res := Result{Sales: sales}
	var count int
	switch {
	case !prev.HasTimestamp():
		res.Mode = ModeBootstrap
		count = r.count(Dedupe(recent))
	case prev.SaleCount <= 0:
		res.Mode = ModeBackfill
		count = r.count(Dedupe(recent))
	default:
		res.Mode = ModeIncremental
		count = prev.SaleCount + r.count(fresh)
	}

	res.Announce = res.Mode != ModeBootstrap && len(sales) > 0 && count > prev.SaleCount
	res.Watermark = prev.Advance(model.Watermark{Timestamp: latest, SaleCount: count})

	r.logger.Debug("reconciled orders",
		"mode", res.Mode,
		"orders", len(orders),
		"fresh", len(fresh),
		"sales", len(sales),
		"prev_count", prev.SaleCount,
		"count", count,
		"announce", res.Announce,
	)
	return res
}

// count returns the number of completed line items, or units with CountUnits.
func (r *Reconciler) count(orders []model.Order) int {
	n := 0
	for _, o := range orders {
		if !o.Completed {
			continue
		}
		for _, li := range o.LineItems {
			if r.opts.CountUnits {
				n += li.Quantity
			} else {
				n++
			}
		}
	}
	return n
}

// Sales expands the completed orders into one sale per line item, sorted ascending by
// time, then order id, then line position.
func Sales(orders []model.Order) []model.Sale {
	var sales []model.Sale
	for _, o := range orders {
		if !o.Completed {
			continue
		}
		for _, li := range o.LineItems {
			sales = append(sales, model.Sale{
				ListingID:           li.ListingID,
				QuantityRemaining:   li.QuantityRemaining,
				NumSold:             li.Quantity,
				OccurredAt:          o.OccurredAt,
				Location:            o.Location,
				FallbackDisplayName: li.Name,
				OrderID:             o.ID,
				UnitPrice:           li.UnitPrice,
			})
		}
	}

	// Stable sort keeps line positions in order within an order.
	slices.SortStableFunc(sales, func(a, b model.Sale) int {
		if c := a.OccurredAt.Compare(b.OccurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.OrderID, b.OrderID)
	})
	return sales
}

// Dedupe drops repeated orders, keeping the first occurrence of each id. Orders without an
// id are kept as is.
func Dedupe(orders []model.Order) []model.Order {
	seen := make(map[string]struct{}, len(orders))
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if o.ID != "" {
			if _, ok := seen[o.ID]; ok {
				continue
			}
			seen[o.ID] = struct{}{}
		}
		out = append(out, o)
	}
	return out
}

// MarkIncomplete implements the complement status filter: every order of all whose id is
// in incomplete is marked not completed, the rest completed.
func MarkIncomplete(all, incomplete []model.Order) []model.Order {
	ids := make(map[string]struct{}, len(incomplete))
	for _, o := range incomplete {
		ids[o.ID] = struct{}{}
	}

	out := make([]model.Order, len(all))
	for i, o := range all {
		_, bad := ids[o.ID]
		o.Completed = !bad
		out[i] = o
	}
	return out
}
