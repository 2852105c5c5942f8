package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Secrets are credentials that are usually kept out of the config file.
type Secrets struct {
	DiscordWebhook       string `envconfig:"DISCORD_WEBHOOK"`
	HealthcheckWebhook   string `envconfig:"DISCORD_HEALTHCHECK_WEBHOOK"`
	EtsyAPIKey           string `envconfig:"ETSY_API_KEY"`
	SquareClientID       string `envconfig:"SQUARE_CLIENT_ID"`
	SquareClientSecret   string `envconfig:"SQUARE_CLIENT_SECRET"`
	Shift4ShopPrivateKey string `envconfig:"SHIFT4SHOP_PRIVATE_KEY"`
	Shift4ShopToken      string `envconfig:"SHIFT4SHOP_SHOP_TOKEN"`
	LedgerDBPassword     string `envconfig:"LEDGER_DB_PASSWORD"`
	RedisPassword        string `envconfig:"REDIS_PASSWORD"`
}

// LoadSecrets reads Secrets from the process environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, fmt.Errorf("process env secrets: %w", err)
	}
	return s, nil
}

// applySecrets fills empty secret fields from the environment. Values set in the
// file win.
func (c *Config) applySecrets() error {
	s, err := LoadSecrets()
	if err != nil {
		return err
	}

	fill(&c.Notify.WebhookURL, s.DiscordWebhook)
	fill(&c.Notify.HealthcheckWebhookURL, s.HealthcheckWebhook)
	fill(&c.Etsy.APIKey, s.EtsyAPIKey)
	fill(&c.Square.ClientID, s.SquareClientID)
	fill(&c.Square.ClientSecret, s.SquareClientSecret)
	fill(&c.Shift4Shop.PrivateKey, s.Shift4ShopPrivateKey)
	fill(&c.Shift4Shop.Token, s.Shift4ShopToken)
	fill(&c.Ledger.Postgres.Password, s.LedgerDBPassword)
	fill(&c.Lock.RedisPassword, s.RedisPassword)
	return nil
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
