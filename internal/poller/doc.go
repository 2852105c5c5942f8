// Package poller runs detection passes on a fixed interval.
//
// The Poller:
//   - Runs every pass once on start, then on each tick
//   - Runs passes for different providers concurrently, bounded by Concurrency
//   - Reports failed passes to an error handler and keeps polling
package poller
