// Package store persists run state as small flat files in one directory per provider:
//
//	timestamp.txt      last processed order time, in the provider's layout
//	num_sales.txt      last known total sale count
//	data.json          last Etsy inventory snapshot, pretty-printed
//	last_success.txt   unix time of the last successful run
//	square_creds.json  Square OAuth credentials
//	etsy_creds.json    Etsy OAuth credentials
//
// Every write goes to a temporary file that is synced and renamed over the target, so a
// crash leaves either the old or the new content. Concurrent writers are excluded by the
// run lock, so last writer wins.
package store
