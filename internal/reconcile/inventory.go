package reconcile

import (
	"cmp"
	"slices"

	"github.com/wacksbywarby/wacks/internal/model"
)

// Diff returns the listings of cur whose quantity differs from prev, sorted by listing id.
// A listing absent from prev counts as quantity 0; listings absent from cur are ignored.
func Diff(prev, cur model.InventorySnapshot) []model.InventoryDiff {
	var diffs []model.InventoryDiff
	for id, listing := range cur {
		prevQty := 0
		if p, ok := prev[id]; ok {
			prevQty = p.Quantity
		}
		if prevQty == listing.Quantity {
			continue
		}
		diffs = append(diffs, model.InventoryDiff{
			ListingID:       id,
			Title:           listing.Title,
			PrevQuantity:    prevQty,
			CurrentQuantity: listing.Quantity,
		})
	}
	slices.SortFunc(diffs, func(a, b model.InventoryDiff) int {
		return cmp.Compare(a.ListingID, b.ListingID)
	})
	return diffs
}

// InventorySales converts the decreases among diffs into sales. Restocks are dropped.
func InventorySales(diffs []model.InventoryDiff) []model.Sale {
	var sales []model.Sale
	for _, d := range diffs {
		n := d.Decrease()
		if n == 0 {
			continue
		}
		remaining := d.CurrentQuantity
		sales = append(sales, model.Sale{
			ListingID:           d.ListingID,
			QuantityRemaining:   &remaining,
			NumSold:             n,
			FallbackDisplayName: d.Title,
		})
	}
	return sales
}

// InventoryInput is one pass of the inventory path.
type InventoryInput struct {
	Previous model.Watermark
	Snapshot model.InventorySnapshot
	Diffs    []model.InventoryDiff
	// ReportedTotal is the provider's own total sale count.
	ReportedTotal int
}

// Inventory reconciles inventory diffs against the previous count. The reported total
// decides whether the decreases are sales or manual inventory edits.
func (r *Reconciler) Inventory(in InventoryInput) Result {
	sales := InventorySales(in.Diffs)
	prev := in.Previous

	res := Result{
		Mode:     ModeInventory,
		Sales:    sales,
		Diffs:    in.Diffs,
		Snapshot: in.Snapshot,
		Announce: len(sales) > 0 && in.ReportedTotal > prev.SaleCount,
	}
	res.Watermark = prev.Advance(model.Watermark{SaleCount: in.ReportedTotal})

	r.logger.Debug("reconciled inventory",
		"diffs", len(in.Diffs),
		"sales", len(sales),
		"prev_count", prev.SaleCount,
		"reported", in.ReportedTotal,
		"announce", res.Announce,
	)
	return res
}
