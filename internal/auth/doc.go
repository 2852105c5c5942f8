// Package auth holds the OAuth credentials of the Etsy and Square integrations and
// refreshes them before they expire.
//
// Etsy access tokens live for an hour and are refreshed through the standard OAuth2
// refresh grant. Square tokens live for 30 days and are refreshed through Square's JSON
// token endpoint. Both refreshers return new credentials; persisting them is up to the
// caller.
package auth
