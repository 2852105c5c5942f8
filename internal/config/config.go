package config

import "time"

// Supported provider integrations.
const (
	ProviderEtsy       = "etsy"
	ProviderSquare     = "square"
	ProviderShift4Shop = "shift4shop"
)

// Lock backends.
const (
	LockBackendFile  = "file"
	LockBackendRedis = "redis"
)

// Ledger drivers.
const (
	LedgerDriverNone     = "none"
	LedgerDriverPostgres = "postgres"
	LedgerDriverSQLite   = "sqlite"
)

// Config is the root configuration for one wack run.
type Config struct {
	Instance    InstanceConfig   `yaml:"instance"`
	Provider    string           `yaml:"provider"`     // etsy, square or shift4shop
	StateDir    string           `yaml:"state_dir"`    // Flat-file state for the provider
	CatalogPath string           `yaml:"catalog_path"` // Display catalog (werbies.json)
	Log         LogConfig        `yaml:"log"`
	API         APIConfig        `yaml:"api"`
	Lock        LockConfig       `yaml:"lock"`
	Notify      NotifyConfig     `yaml:"notify"`
	Reconcile   ReconcileConfig  `yaml:"reconcile"`
	Ledger      LedgerConfig     `yaml:"ledger"`
	Etsy        EtsyConfig       `yaml:"etsy"`
	Square      SquareConfig     `yaml:"square"`
	Shift4Shop  Shift4ShopConfig `yaml:"shift4shop"`
}

// InstanceConfig identifies this installation.
type InstanceConfig struct {
	Name    string `yaml:"name"`
	DataDir string `yaml:"data_dir"`
}

// LogConfig holds slog settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// APIConfig holds HTTP client settings shared by every provider client.
type APIConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	RateLimit    float64       `yaml:"rate_limit"` // Requests per second, 0 disables pacing
	Burst        int           `yaml:"burst"`
}

// LockConfig selects how concurrent runs are excluded.
type LockConfig struct {
	Backend       string        `yaml:"backend"` // file or redis
	Path          string        `yaml:"path"`
	Timeout       time.Duration `yaml:"timeout"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// NotifyConfig holds the chat webhook settings.
type NotifyConfig struct {
	WebhookURL            string `yaml:"webhook_url"`
	HealthcheckWebhookURL string `yaml:"healthcheck_webhook_url"`
	Username              string `yaml:"username"`
	AvatarURL             string `yaml:"avatar_url"`
	Owner                 string `yaml:"owner"` // Shop owner name used in the summary line
	SummaryColor          int    `yaml:"summary_color"`
	Milestones            []int  `yaml:"milestones"`
	PartyImageURL         string `yaml:"party_image_url"`
}

// ReconcileConfig tunes sale counting.
type ReconcileConfig struct {
	CountUnits bool `yaml:"count_units"` // Count units sold instead of line items
}

// LedgerConfig selects the optional sales ledger.
type LedgerConfig struct {
	Driver     string   `yaml:"driver"` // none, postgres or sqlite
	SQLitePath string   `yaml:"sqlite_path"`
	Postgres   DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// EtsyConfig holds Etsy Open API v3 settings.
type EtsyConfig struct {
	BaseURL     string        `yaml:"base_url"`
	TokenURL    string        `yaml:"token_url"`
	ShopID      string        `yaml:"shop_id"`
	ShopURL     string        `yaml:"shop_url"` // Public shop page, used when sales_source is scrape
	APIKey      string        `yaml:"api_key"`
	SalesSource string        `yaml:"sales_source"` // api or scrape
	CountDelay  time.Duration `yaml:"count_delay"`
	States      []string      `yaml:"states"`
	PageLimit   int           `yaml:"page_limit"`
}

// SquareConfig holds Square Connect v2 settings.
type SquareConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Version        string        `yaml:"version"` // Square-Version header
	LocationIDs    []string      `yaml:"location_ids"`
	ClientID       string        `yaml:"client_id"`
	ClientSecret   string        `yaml:"client_secret"`
	LookupStock    bool          `yaml:"lookup_stock"`
	PageLimit      int           `yaml:"page_limit"`
	MaxPages       int           `yaml:"max_pages"`
	BackfillWindow time.Duration `yaml:"backfill_window"`
}

// Shift4ShopConfig holds Shift4Shop (3dcart) REST settings.
type Shift4ShopConfig struct {
	BaseURL             string        `yaml:"base_url"`
	SecureURL           string        `yaml:"secure_url"`
	PrivateKey          string        `yaml:"private_key"`
	Token               string        `yaml:"token"`
	StatusFilter        string        `yaml:"status_filter"` // client or complement
	IncompleteStatusIDs []int         `yaml:"incomplete_status_ids"`
	PageLimit           int           `yaml:"page_limit"`
	MaxPages            int           `yaml:"max_pages"`
	BackfillWindow      time.Duration `yaml:"backfill_window"`
}
