package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
)

// EtsyRefresher exchanges an Etsy refresh token for a new access token.
type EtsyRefresher struct {
	cfg        oauth2.Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewEtsyRefresher creates a refresher. clientID is the Etsy API keystring.
func NewEtsyRefresher(clientID, tokenURL string, httpClient *http.Client, logger *slog.Logger) *EtsyRefresher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EtsyRefresher{
		cfg: oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh returns credentials with a new access token.
func (r *EtsyRefresher) Refresh(ctx context.Context, creds EtsyCredentials) (EtsyCredentials, error) {
	if creds.RefreshToken == "" {
		return EtsyCredentials{}, errors.New("etsy credentials have no refresh token")
	}

	// An expired token forces the token source to use the refresh grant.
	old := creds.Token()
	old.Expiry = r.now().Add(-time.Minute)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	tok, err := r.cfg.TokenSource(ctx, old).Token()
	if err != nil {
		return EtsyCredentials{}, errors.Wrap(err, "refresh etsy token")
	}

	now := r.now()
	next := EtsyCredentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if !tok.Expiry.IsZero() {
		next.ExpiresIn = int(tok.Expiry.Sub(now).Round(time.Second).Seconds())
		next.ExpiresAt = tok.Expiry.Unix()
	}

	r.logger.Info("refreshed etsy token", "expires_at", time.Unix(next.ExpiresAt, 0).UTC())
	return next, nil
}
