// Package etsy reads shop inventory and the total sale count from Etsy.
//
// Etsy does not expose orders to this integration, so sales are inferred from quantity
// decreases between inventory snapshots and confirmed against the shop's sold count.
package etsy

import (
	"context"
	"log/slog"
	"cmp"
	"net/url"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
	"github.com/wacksbywarby/wacks/internal/provider"
)

// Sale count sources.
const (
	SalesSourceAPI    = "api"
	SalesSourceScrape = "scrape"
)

// Client reads Etsy listings for one shop.
type Client struct {
	api    *api.Client
	page   *api.Client
	cfg    config.EtsyConfig
	logger *slog.Logger
}

// New creates an Etsy client authenticated with an OAuth access token.
func New(cfg config.EtsyConfig, apiCfg config.APIConfig, accessToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	opts := append(provider.ClientOptions(apiCfg, logger),
		api.WithHeader("x-api-key", cfg.APIKey),
		api.WithBearerToken(accessToken),
	)
	return &Client{
		api:    api.NewClient(config.ProviderEtsy, cfg.BaseURL, opts...),
		page:   api.NewClient(config.ProviderEtsy, cfg.ShopURL, provider.ClientOptions(apiCfg, logger)...),
		cfg:    cfg,
		logger: logger,
	}
}

// Name implements provider.InventorySource.
func (c *Client) Name() string { return config.ProviderEtsy }

// Inventory implements provider.InventorySource. Listings in states outside the
// configured set are left out of the snapshot.
func (c *Client) Inventory(ctx context.Context) (model.InventorySnapshot, error) {
	snapshot := make(model.InventorySnapshot)
	for _, state := range c.cfg.States {
		listings, err := c.listings(ctx, state)
		if err != nil {
			return nil, err
		}
		for _, l := range listings {
			id := strconv.FormatInt(l.ListingID, 10)
			snapshot[id] = model.Listing{
				ListingID: id,
				Title:     l.Title,
				Quantity:  l.Quantity,
				State:     l.State,
			}
		}
	}
	c.logger.Info("got inventory state", "items", len(snapshot))
	return snapshot, nil
}

func (c *Client) listings(ctx context.Context, state string) ([]Listing, error) {
	path := "/shops/" + url.PathEscape(c.cfg.ShopID) + "/listings"
	q := url.Values{}
	q.Set("state", state)
	q.Set("limit", strconv.Itoa(c.cfg.PageLimit))

	var out []Listing
	for offset := 0; ; {
		q.Set("offset", strconv.Itoa(offset))

		var resp listingsResponse
		if err := c.api.Get(ctx, path, q, &resp); err != nil {
			return nil, errors.Wrapf(err, "list %s listings", state)
		}
		out = append(out, resp.Results...)
		offset += len(resp.Results)

		if len(resp.Results) == 0 || offset >= resp.Count {
			return out, nil
		}
	}
}

// TotalSales implements provider.InventorySource, reading the shop's sold count from the
// API or from the public shop page.
func (c *Client) TotalSales(ctx context.Context) (int, error) {
	if c.cfg.SalesSource == SalesSourceScrape {
		page, err := c.page.GetPage(ctx, "", nil)
		if err != nil {
			return 0, errors.Wrap(err, "fetch shop page")
		}
		n, err := ScrapeSoldCount(page)
		if err != nil {
			return 0, err
		}
		c.logger.Info("scraped num sales", "num_sales", n)
		return n, nil
	}

	var shop Shop
	if err := c.api.Get(ctx, "/shops/"+url.PathEscape(c.cfg.ShopID), nil, &shop); err != nil {
		return 0, errors.Wrap(err, "get shop")
	}
	c.logger.Info("got num sales", "num_sales", shop.TransactionSoldCount)
	return shop.TransactionSoldCount, nil
}

// ListCatalog implements provider.Lister.
func (c *Client) ListCatalog(ctx context.Context) ([]provider.CatalogItem, error) {
	snapshot, err := c.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]provider.CatalogItem, 0, len(snapshot))
	for _, l := range snapshot {
		qty := l.Quantity
		items = append(items, provider.CatalogItem{ID: l.ListingID, Name: l.Title, Quantity: &qty})
	}
	slices.SortFunc(items, func(a, b provider.CatalogItem) int { return cmp.Compare(a.ID, b.ID) })
	return items, nil
}
