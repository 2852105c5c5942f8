package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// Refresh windows: credentials closer than this to expiry are refreshed.
const (
	EtsyRefreshWindow   = 10 * time.Minute
	SquareRefreshWindow = 7 * 24 * time.Hour
)

// SquareCredentials is the content of square_creds.json.
type SquareCredentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ShortLived   bool      `json:"short_lived"`
	ExpiresAt    time.Time `json:"expires_at"`
	MerchantID   string    `json:"merchant_id"`
	TokenType    string    `json:"token_type"`
}

// NeedsRefresh reports whether the access token expires within SquareRefreshWindow.
func (c SquareCredentials) NeedsRefresh(now time.Time) bool {
	return c.ExpiresAt.Sub(now) <= SquareRefreshWindow
}

// EtsyCredentials is the content of etsy_creds.json. ExpiresAt is in unix seconds.
type EtsyCredentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Expiry returns ExpiresAt as a time.
func (c EtsyCredentials) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// NeedsRefresh reports whether the access token expires within EtsyRefreshWindow.
func (c EtsyCredentials) NeedsRefresh(now time.Time) bool {
	return c.Expiry().Sub(now) <= EtsyRefreshWindow
}

// Token converts the credentials to an oauth2 token.
func (c EtsyCredentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry(),
	}
}
