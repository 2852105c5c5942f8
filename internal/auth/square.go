package auth

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
)

// SquareRefresher renews Square OAuth access tokens.
type SquareRefresher struct {
	client       *api.Client
	clientID     string
	clientSecret string
	logger       *slog.Logger
}

// NewSquareRefresher creates a refresher that posts to /oauth2/token on client.
func NewSquareRefresher(client *api.Client, clientID, clientSecret string, logger *slog.Logger) *SquareRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SquareRefresher{client: client, clientID: clientID, clientSecret: clientSecret, logger: logger}
}

type squareRefreshRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh returns credentials with a new access token. Square keeps the refresh token
// unless the response carries a new one.
func (r *SquareRefresher) Refresh(ctx context.Context, creds SquareCredentials) (SquareCredentials, error) {
	if creds.RefreshToken == "" {
		return SquareCredentials{}, errors.New("square credentials have no refresh token")
	}

	req := squareRefreshRequest{
		ClientID:     r.clientID,
		ClientSecret: r.clientSecret,
		GrantType:    "refresh_token",
		RefreshToken: creds.RefreshToken,
	}

	var next SquareCredentials
	if err := r.client.Post(ctx, "/oauth2/token", req, &next); err != nil {
		return SquareCredentials{}, errors.Wrap(err, "refresh square token")
	}
	if next.AccessToken == "" {
		return SquareCredentials{}, errors.New("refresh square token: empty access token")
	}
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}
	if next.MerchantID == "" {
		next.MerchantID = creds.MerchantID
	}

	r.logger.Info("refreshed square token", "expires_at", next.ExpiresAt, "merchant_id", next.MerchantID)
	return next, nil
}
