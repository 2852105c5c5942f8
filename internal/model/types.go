package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Sales
// -----------------------------------------------------------------------------

// Sale is one line item of one order, or one inferred inventory decrease.
type Sale struct {
	ListingID           string           // Canonical listing id (catalog key)
	QuantityRemaining   *int             // Stock left after the sale, nil when unknown
	NumSold             int              // Units sold
	OccurredAt          time.Time        // Zero when the source has no per-sale time
	Location            string           // Optional point-of-sale location
	FallbackDisplayName string           // Provider title, used when the catalog has no entry
	OrderID             string           // Empty for inventory-diff sales
	UnitPrice           *decimal.Decimal // Nil when the provider does not report it
}

// SoldOut reports whether the sale left the listing with no stock.
func (s Sale) SoldOut() bool {
	return s.QuantityRemaining != nil && *s.QuantityRemaining == 0
}

// Order is a provider order converted to canonical form.
type Order struct {
	ID         string
	Status     string // Provider status/state, kept for logging
	Completed  bool
	OccurredAt time.Time
	Location   string
	LineItems  []LineItem
}

// LineItem is a single product line within an Order.
type LineItem struct {
	ListingID         string
	Name              string
	Quantity          int
	UnitPrice         *decimal.Decimal
	QuantityRemaining *int
}

// -----------------------------------------------------------------------------
// Inventory
// -----------------------------------------------------------------------------

// Listing is one entry of an inventory snapshot. The JSON shape matches data.json.
type Listing struct {
	ListingID string `json:"listing_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	State     string `json:"state"`
}

// InventorySnapshot maps listing id to its listing at one point in time.
type InventorySnapshot map[string]Listing

// InventoryDiff is the quantity change of one listing between two snapshots.
type InventoryDiff struct {
	ListingID       string
	Title           string
	PrevQuantity    int
	CurrentQuantity int
}

// Decrease returns the number of units that left the listing, or 0 for a restock.
func (d InventoryDiff) Decrease() int {
	if d.CurrentQuantity < d.PrevQuantity {
		return d.PrevQuantity - d.CurrentQuantity
	}
	return 0
}

// -----------------------------------------------------------------------------
// Run state
// -----------------------------------------------------------------------------

// Watermark is the persisted reconciliation cursor.
type Watermark struct {
	Timestamp time.Time // Zero when no run has recorded a timestamp yet
	SaleCount int       // Running total of announced sales, 0 when unknown
}

// HasTimestamp reports whether a previous run recorded a timestamp.
func (w Watermark) HasTimestamp() bool {
	return !w.Timestamp.IsZero()
}

// Advance returns a watermark that is never behind w in either field.
func (w Watermark) Advance(next Watermark) Watermark {
	out := w
	if next.Timestamp.After(out.Timestamp) {
		out.Timestamp = next.Timestamp
	}
	if next.SaleCount > out.SaleCount {
		out.SaleCount = next.SaleCount
	}
	return out
}
