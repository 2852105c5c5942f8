// Package ledger keeps an optional append-only record of announced sales.
//
// Rows are keyed by a deterministic sale id, so a run that is retried after a failed
// watermark write records the same sales again without duplicating them.
package ledger
