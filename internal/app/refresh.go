package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/auth"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/provider/square"
	"github.com/wacksbywarby/wacks/internal/store"
)

// RefreshCredentials renews the configured provider's OAuth token when it is close to
// expiry, or always with force. It reports whether new credentials were written.
func RefreshCredentials(ctx context.Context, cfg *config.Config, st *store.Store, force bool, now time.Time, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Provider {
	case config.ProviderEtsy:
		var creds auth.EtsyCredentials
		if err := readCreds(st, store.EtsyCredsFile, &creds); err != nil {
			return false, err
		}
		if !force && !creds.NeedsRefresh(now) {
			logger.Info("etsy token still fresh", "expires_at", creds.Expiry().UTC())
			return false, nil
		}
		next, err := auth.NewEtsyRefresher(cfg.Etsy.APIKey, cfg.Etsy.TokenURL, nil, logger).Refresh(ctx, creds)
		if err != nil {
			return false, err
		}
		return true, st.WriteJSON(store.EtsyCredsFile, next)

	case config.ProviderSquare:
		var creds auth.SquareCredentials
		if err := readCreds(st, store.SquareCredsFile, &creds); err != nil {
			return false, err
		}
		if !force && !creds.NeedsRefresh(now) {
			logger.Info("square token still fresh", "expires_at", creds.ExpiresAt)
			return false, nil
		}
		client := square.NewAPIClient(cfg.Square, cfg.API, logger)
		next, err := auth.NewSquareRefresher(client, cfg.Square.ClientID, cfg.Square.ClientSecret, logger).Refresh(ctx, creds)
		if err != nil {
			return false, err
		}
		return true, st.WriteJSON(store.SquareCredsFile, next)

	default:
		return false, errors.Newf("provider %q has no oauth credentials", cfg.Provider)
	}
}
