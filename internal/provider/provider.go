// Package provider defines what the runner needs from a shop integration. The etsy, square
// and shift4shop subpackages implement it, converting their typed API records to model
// types at the boundary.
package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
)

// ErrNoResults marks a provider's "nothing matched" answer. Clients map it to an empty
// result; it never reaches the runner.
var ErrNoResults = errors.New("no results")

// OrderSource is a provider that reports individual orders.
type OrderSource interface {
	Name() string
	// TimestampLayout is the time layout of the stored watermark timestamp.
	TimestampLayout() string
	// OrdersSince returns every order that occurred after since. A zero since returns
	// all orders the provider will page through.
	OrdersSince(ctx context.Context, since time.Time) ([]model.Order, error)
	// RecentOrders returns one bounded page of the most recent orders, used to recount
	// the total when no count is stored.
	RecentOrders(ctx context.Context) ([]model.Order, error)
}

// InventorySource is a provider that only exposes current stock and a shop total.
type InventorySource interface {
	Name() string
	Inventory(ctx context.Context) (model.InventorySnapshot, error)
	TotalSales(ctx context.Context) (int, error)
}

// CatalogItem is one sellable item as listed by the ls command.
type CatalogItem struct {
	ID       string
	Name     string
	Quantity *int
}

// Lister lists the provider's catalog ids, for filling in werbies.json.
type Lister interface {
	ListCatalog(ctx context.Context) ([]CatalogItem, error)
}

// ClientOptions returns the api client options shared by every provider.
func ClientOptions(cfg config.APIConfig, logger *slog.Logger) []api.ClientOption {
	return []api.ClientOption{
		api.WithTimeout(cfg.Timeout),
		api.WithRetries(cfg.MaxRetries, cfg.RetryBackoff),
		api.WithRateLimit(cfg.RateLimit, cfg.Burst),
		api.WithLogger(logger),
	}
}
