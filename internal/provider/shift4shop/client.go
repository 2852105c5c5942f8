// Package shift4shop reads orders and products from the Shift4Shop (3dcart) REST API.
package shift4shop

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
	"github.com/wacksbywarby/wacks/internal/provider"
	"github.com/wacksbywarby/wacks/internal/reconcile"
)

// Layout is the datestart query format, also used for the stored watermark.
const Layout = "01/02/2006 15:04:05"

// Status filter strategies.
const (
	StatusFilterClient     = "client"
	StatusFilterComplement = "complement"
)

// Client reads Shift4Shop orders.
type Client struct {
	api    *api.Client
	cfg    config.Shift4ShopConfig
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Shift4Shop client.
func New(cfg config.Shift4ShopConfig, apiCfg config.APIConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts := append(provider.ClientOptions(apiCfg, logger),
		api.WithHeader("SecureURL", cfg.SecureURL),
		api.WithHeader("PrivateKey", cfg.PrivateKey),
		api.WithHeader("Token", cfg.Token),
	)
	return &Client{
		api:    api.NewClient(config.ProviderShift4Shop, cfg.BaseURL, opts...),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Name implements provider.OrderSource.
func (c *Client) Name() string { return config.ProviderShift4Shop }

// TimestampLayout implements provider.OrderSource.
func (c *Client) TimestampLayout() string { return Layout }

// OrdersSince returns the orders placed after since, up to max_pages pages.
func (c *Client) OrdersSince(ctx context.Context, since time.Time) ([]model.Order, error) {
	q := url.Values{}
	if !since.IsZero() {
		// datestart is inclusive; the reconciler drops the boundary order.
		q.Set("datestart", since.UTC().Format(Layout))
	}
	return c.orders(ctx, q, c.cfg.MaxPages)
}

// RecentOrders returns one page of orders from the backfill window.
func (c *Client) RecentOrders(ctx context.Context) ([]model.Order, error) {
	q := url.Values{}
	q.Set("datestart", c.now().Add(-c.cfg.BackfillWindow).UTC().Format(Layout))
	return c.orders(ctx, q, 1)
}

// orders runs a search and marks completion with the configured strategy.
func (c *Client) orders(ctx context.Context, q url.Values, maxPages int) ([]model.Order, error) {
	raw, err := c.search(ctx, q, maxPages)
	if err != nil {
		return nil, err
	}

	if c.cfg.StatusFilter != StatusFilterComplement {
		return c.convert(raw, func(o Order) bool {
			return !slices.Contains(c.cfg.IncompleteStatusIDs, o.OrderStatusID)
		}), nil
	}

	// The API filters on a single status, so incomplete orders take one query each.
	var incomplete []Order
	for _, status := range c.cfg.IncompleteStatusIDs {
		sq := maps.Clone(q)
		sq.Set("orderstatus", strconv.Itoa(status))
		orders, err := c.search(ctx, sq, maxPages)
		if err != nil {
			return nil, errors.Wrapf(err, "search status %d", status)
		}
		incomplete = append(incomplete, orders...)
	}

	all := c.convert(raw, func(Order) bool { return true })
	return reconcile.MarkIncomplete(all, c.convert(incomplete, func(Order) bool { return false })), nil
}

// convert maps records to model orders, skipping what cannot be parsed.
func (c *Client) convert(raw []Order, completed func(Order) bool) []model.Order {
	out := make([]model.Order, 0, len(raw))
	for _, o := range raw {
		order, skipped, err := o.toModel(completed(o))
		if err != nil {
			c.logger.Warn("skipping order", "order_id", o.OrderID, "error", err)
			continue
		}
		for _, item := range skipped {
			c.logger.Warn("skipping line item",
				"order_id", o.OrderID,
				"catalog_id", item.CatalogID,
				"quantity", item.ItemQuantity,
			)
		}
		out = append(out, order)
	}
	return out
}

// search pages through GET /Orders.
func (c *Client) search(ctx context.Context, q url.Values, maxPages int) ([]Order, error) {
	limit := c.cfg.PageLimit
	var out []Order

	for page := 0; page < maxPages; page++ {
		batch, err := c.fetchPage(ctx, q, limit, page*limit)
		if errors.Is(err, provider.ErrNoResults) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		out = append(out, batch...)
		if len(batch) < limit {
			return out, nil
		}
	}

	c.logger.Warn("order search truncated", "pages", maxPages, "orders", len(out))
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, q url.Values, limit, offset int) ([]Order, error) {
	pq := maps.Clone(q)
	if pq == nil {
		pq = url.Values{}
	}
	pq.Set("limit", strconv.Itoa(limit))
	pq.Set("offset", strconv.Itoa(offset))

	var batch []Order
	err := c.api.Get(ctx, "/Orders", pq, &batch)
	if api.IsStatus(err, http.StatusNotFound) {
		// Shift4Shop answers an empty search with 404.
		return nil, errors.Mark(err, provider.ErrNoResults)
	}
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return batch, nil
}

// ListCatalog implements provider.Lister.
func (c *Client) ListCatalog(ctx context.Context) ([]provider.CatalogItem, error) {
	const limit = 100
	var items []provider.CatalogItem

	for offset := 0; ; offset += limit {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))

		var products []Product
		err := c.api.Get(ctx, "/Products", q, &products)
		if api.IsStatus(err, http.StatusNotFound) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "list products")
		}

		for _, p := range products {
			item := provider.CatalogItem{
				ID:   strconv.Itoa(p.SKUInfo.CatalogID),
				Name: p.SKUInfo.Name,
			}
			if stock, ok := wholeNumber(p.SKUInfo.Stock); ok {
				item.Quantity = &stock
			}
			items = append(items, item)
		}
		if len(products) < limit {
			break
		}
	}
	return items, nil
}
