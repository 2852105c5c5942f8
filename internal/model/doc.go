// Package model defines the canonical data types shared by providers, the reconciler,
// the notifier and the state store.
//
// Conventions:
//   - Listing ids are strings regardless of the provider's native id type
//   - Timestamps are time.Time; the zero value means "unknown" (or "never" for a Watermark)
//   - Quantities are whole units; money is shopspring/decimal
package model
