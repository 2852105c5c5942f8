// Package reconcile turns provider results and the previous watermark into the sales to
// announce and the next watermark. It performs no I/O.
//
// Order providers (Square, Shift4Shop) go through Reconciler.Orders; the Etsy inventory
// path goes through Diff and Reconciler.Inventory.
//
// # Modes
//
//   - bootstrap: no stored timestamp. The count is recounted from the recent window and the
//     watermark is seeded; nothing is announced.
//   - backfill: timestamp known but no stored count. The count is recounted from the recent
//     window.
//   - incremental: both known. The count grows by the completed sales of the delta window.
//   - inventory: the Etsy snapshot diff; the shop's reported total is authoritative.
//
// In every mode a sale is announced only when the new total is strictly greater than the
// stored one, and the watermark never moves backwards.
package reconcile
