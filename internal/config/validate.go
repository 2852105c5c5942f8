package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.Name == "" {
		return errors.New("instance.name is required")
	}
	if c.StateDir == "" {
		return errors.New("state_dir is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.RateLimit < 0 {
		return errors.New("api.rate_limit must be >= 0")
	}

	switch c.Lock.Backend {
	case LockBackendFile, LockBackendRedis:
	default:
		return fmt.Errorf("lock.backend must be file or redis, got %q", c.Lock.Backend)
	}

	switch c.Ledger.Driver {
	case LedgerDriverNone, LedgerDriverSQLite:
	case LedgerDriverPostgres:
		if err := c.Ledger.Postgres.validate("ledger.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("ledger.driver must be none, postgres or sqlite, got %q", c.Ledger.Driver)
	}

	switch c.Provider {
	case ProviderEtsy:
		return c.Etsy.validate()
	case ProviderSquare:
		return c.Square.validate()
	case ProviderShift4Shop:
		return c.Shift4Shop.validate()
	case "":
		return errors.New("provider is required")
	default:
		return fmt.Errorf("provider must be one of etsy, square, shift4shop, got %q", c.Provider)
	}
}

func (e *EtsyConfig) validate() error {
	if e.ShopID == "" {
		return errors.New("etsy.shop_id is required")
	}
	if e.APIKey == "" {
		return errors.New("etsy.api_key is required")
	}
	switch e.SalesSource {
	case "api":
	case "scrape":
		if e.ShopURL == "" {
			return errors.New("etsy.shop_url is required when etsy.sales_source is scrape")
		}
	default:
		return fmt.Errorf("etsy.sales_source must be api or scrape, got %q", e.SalesSource)
	}
	if e.PageLimit < 1 || e.PageLimit > 100 {
		return fmt.Errorf("etsy.page_limit must be between 1 and 100, got %d", e.PageLimit)
	}
	return nil
}

func (s *SquareConfig) validate() error {
	if len(s.LocationIDs) == 0 {
		return errors.New("square.location_ids is required")
	}
	if s.PageLimit < 1 || s.PageLimit > 1000 {
		return fmt.Errorf("square.page_limit must be between 1 and 1000, got %d", s.PageLimit)
	}
	if s.MaxPages < 1 {
		return errors.New("square.max_pages must be >= 1")
	}
	return nil
}

func (s *Shift4ShopConfig) validate() error {
	if s.SecureURL == "" {
		return errors.New("shift4shop.secure_url is required")
	}
	if s.PrivateKey == "" {
		return errors.New("shift4shop.private_key is required")
	}
	if s.Token == "" {
		return errors.New("shift4shop.token is required")
	}
	switch s.StatusFilter {
	case "client", "complement":
	default:
		return fmt.Errorf("shift4shop.status_filter must be client or complement, got %q", s.StatusFilter)
	}
	if s.PageLimit < 1 || s.PageLimit > 300 {
		return fmt.Errorf("shift4shop.page_limit must be between 1 and 300, got %d", s.PageLimit)
	}
	if s.MaxPages < 1 {
		return errors.New("shift4shop.max_pages must be >= 1")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
