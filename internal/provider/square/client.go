// Package square reads orders, stock and catalog items from the Square Connect v2 API.
package square

import (
	"context"
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
	"github.com/wacksbywarby/wacks/internal/provider"
)

// Layout is the closed_at format, also used for the stored watermark. Square reports
// milliseconds, so the fraction must survive a store round-trip.
const Layout = time.RFC3339Nano

// Client reads Square orders for the configured locations.
type Client struct {
	api    *api.Client
	cfg    config.SquareConfig
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Square client authenticated with an OAuth access token.
func New(cfg config.SquareConfig, apiCfg config.APIConfig, accessToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts := append(provider.ClientOptions(apiCfg, logger),
		api.WithBearerToken(accessToken),
		api.WithHeader("Square-Version", cfg.Version),
	)
	return &Client{
		api:    api.NewClient(config.ProviderSquare, cfg.BaseURL, opts...),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// NewAPIClient returns a bare client for the Square API, used for token refresh.
func NewAPIClient(cfg config.SquareConfig, apiCfg config.APIConfig, logger *slog.Logger) *api.Client {
	opts := append(provider.ClientOptions(apiCfg, logger), api.WithHeader("Square-Version", cfg.Version))
	return api.NewClient(config.ProviderSquare, cfg.BaseURL, opts...)
}

// Name implements provider.OrderSource.
func (c *Client) Name() string { return config.ProviderSquare }

// TimestampLayout implements provider.OrderSource.
func (c *Client) TimestampLayout() string { return Layout }

// OrdersSince returns the orders closed at or after since, oldest first. A zero since
// searches the backfill window.
func (c *Client) OrdersSince(ctx context.Context, since time.Time) ([]model.Order, error) {
	if since.IsZero() {
		since = c.now().Add(-c.cfg.BackfillWindow)
	}
	return c.search(ctx, since, "ASC", c.cfg.MaxPages)
}

// RecentOrders returns the newest page of orders in the backfill window.
func (c *Client) RecentOrders(ctx context.Context) ([]model.Order, error) {
	return c.search(ctx, c.now().Add(-c.cfg.BackfillWindow), "DESC", 1)
}

func (c *Client) search(ctx context.Context, since time.Time, sortOrder string, maxPages int) ([]model.Order, error) {
	req := searchOrdersRequest{
		LocationIDs: c.cfg.LocationIDs,
		Limit:       c.cfg.PageLimit,
		Query: &orderQuery{
			Filter: orderFilter{DateTimeFilter: dateTimeFilter{
				ClosedAt: timeRange{StartAt: since.UTC().Format(Layout)},
			}},
			Sort: orderSort{SortField: "CLOSED_AT", SortOrder: sortOrder},
		},
	}

	var raw []Order
	for page := 0; ; page++ {
		if page == maxPages {
			c.logger.Warn("order search truncated", "pages", maxPages, "orders", len(raw))
			break
		}

		var resp searchOrdersResponse
		if err := c.api.Post(ctx, "/v2/orders/search", req, &resp); err != nil {
			return nil, errors.Wrap(err, "search orders")
		}
		// An empty result is {} with no orders key.
		raw = append(raw, resp.Orders...)

		if resp.Cursor == "" {
			break
		}
		req.Cursor = resp.Cursor
	}

	orders := make([]model.Order, 0, len(raw))
	for _, o := range raw {
		order, skipped, err := o.toModel()
		if err != nil {
			c.logger.Warn("skipping order", "order_id", o.ID, "error", err)
			continue
		}
		for _, item := range skipped {
			c.logger.Warn("skipping line item", "order_id", o.ID, "uid", item.UID, "quantity", item.Quantity)
		}
		orders = append(orders, order)
	}

	if c.cfg.LookupStock {
		c.attachStock(ctx, orders)
	}
	return orders, nil
}

// attachStock fills QuantityRemaining from current inventory counts. Failures only cost
// the sold-out footer, so they are logged.
func (c *Client) attachStock(ctx context.Context, orders []model.Order) {
	var ids []string
	for _, o := range orders {
		if !o.Completed {
			continue
		}
		for _, li := range o.LineItems {
			if !slices.Contains(ids, li.ListingID) {
				ids = append(ids, li.ListingID)
			}
		}
	}
	if len(ids) == 0 {
		return
	}

	stock, err := c.InventoryCounts(ctx, ids)
	if err != nil {
		c.logger.Warn("inventory lookup failed", "error", err)
		return
	}

	for i := range orders {
		for j := range orders[i].LineItems {
			li := &orders[i].LineItems[j]
			if n, ok := stock[li.ListingID]; ok {
				li.QuantityRemaining = &n
			}
		}
	}
}

// InventoryCounts returns the in-stock quantity per catalog object id, summed over the
// configured locations.
func (c *Client) InventoryCounts(ctx context.Context, catalogObjectIDs []string) (map[string]int, error) {
	req := inventoryCountsRequest{
		CatalogObjectIDs: catalogObjectIDs,
		LocationIDs:      c.cfg.LocationIDs,
		States:           []string{"IN_STOCK"},
	}

	out := make(map[string]int, len(catalogObjectIDs))
	for {
		var resp inventoryCountsResponse
		if err := c.api.Post(ctx, "/v2/inventory/counts/batch-retrieve", req, &resp); err != nil {
			return nil, errors.Wrap(err, "retrieve inventory counts")
		}
		for _, count := range resp.Counts {
			if count.State != "" && count.State != "IN_STOCK" {
				continue
			}
			n, ok := parseQuantity(count.Quantity)
			if !ok {
				continue
			}
			out[count.CatalogObjectID] += n
		}
		if resp.Cursor == "" {
			return out, nil
		}
		req.Cursor = resp.Cursor
	}
}

// ListCatalog implements provider.Lister. Items are listed per variation, since orders
// reference variation ids.
func (c *Client) ListCatalog(ctx context.Context) ([]provider.CatalogItem, error) {
	var items []provider.CatalogItem
	q := url.Values{}
	q.Set("types", "ITEM")

	for {
		var resp listCatalogResponse
		if err := c.api.Get(ctx, "/v2/catalog/list", q, &resp); err != nil {
			return nil, errors.Wrap(err, "list catalog")
		}
		for _, obj := range resp.Objects {
			if obj.ItemData == nil {
				continue
			}
			for _, v := range obj.ItemData.Variations {
				name := obj.ItemData.Name
				if v.ItemVariationData != nil && v.ItemVariationData.Name != "" && v.ItemVariationData.Name != "Regular" {
					name += " (" + v.ItemVariationData.Name + ")"
				}
				items = append(items, provider.CatalogItem{ID: v.ID, Name: name})
			}
		}
		if resp.Cursor == "" {
			return items, nil
		}
		q.Set("cursor", resp.Cursor)
	}
}
