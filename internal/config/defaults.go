package config

import (
	"path/filepath"
	"time"

	"github.com/gosimple/slug"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceName      = "wacks"
	DefaultDataDir           = "data"
	DefaultCatalogPath       = "werbies.json"
	DefaultLogLevel          = "info"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBackoff      = 1 * time.Second
	DefaultBurst             = 1
	DefaultLockBackend       = LockBackendFile
	DefaultLockFile          = "wack.lock"
	DefaultLockTimeout       = 5 * time.Second
	DefaultLockTTL           = 10 * time.Minute
	DefaultRedisAddr         = "localhost:6379"
	DefaultUsername          = "Wacks By Warby"
	DefaultAvatarURL         = "https://gonintendo.com/uploads/file_upload/upload/72974/wb.jpg"
	DefaultOwner             = "Werby"
	DefaultSummaryColor      = 15277667 // luminous vivid pink
	DefaultLedgerDriver      = LedgerDriverNone
	DefaultLedgerFile        = "ledger.db"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 2
	DefaultEtsyBaseURL       = "https://openapi.etsy.com/v3/application"
	DefaultEtsyTokenURL      = "https://api.etsy.com/v3/public/oauth/token"
	DefaultEtsySalesSource   = "api"
	DefaultEtsyCountDelay    = 15 * time.Second
	DefaultEtsyPageLimit     = 100
	DefaultSquareBaseURL     = "https://connect.squareup.com"
	DefaultSquareVersion     = "2024-01-18"
	DefaultSquarePageLimit   = 500
	DefaultSquarePages       = 10
	DefaultShift4ShopBaseURL = "https://apirest.3dcart.com/3dCartWebAPI/v2"
	DefaultStatusFilter      = "client"
	DefaultShift4ShopLimit   = 300
	DefaultShift4ShopPages   = 10
	DefaultBackfillWindow    = 90 * 24 * time.Hour
	StatusNotCompleted       = 7 // Shift4Shop "Not Completed" order status
)

// DefaultMilestones are the sale totals that earn a party message.
var DefaultMilestones = []int{200}

// DefaultEtsyStates are the listing states that still count as inventory.
var DefaultEtsyStates = []string{"active", "sold_out"}

func (c *Config) applyDefaults() {
	// Instance defaults
	if c.Instance.Name == "" {
		c.Instance.Name = DefaultInstanceName
	}
	if c.Instance.DataDir == "" {
		c.Instance.DataDir = DefaultDataDir
	}
	if c.StateDir == "" && c.Provider != "" {
		c.StateDir = filepath.Join(c.Instance.DataDir, slug.Make(c.Instance.Name+" "+c.Provider))
	}
	if c.CatalogPath == "" {
		c.CatalogPath = DefaultCatalogPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	// API defaults
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.Burst == 0 {
		c.API.Burst = DefaultBurst
	}

	// Lock defaults
	if c.Lock.Backend == "" {
		c.Lock.Backend = DefaultLockBackend
	}
	if c.Lock.Path == "" {
		c.Lock.Path = filepath.Join(c.StateDir, DefaultLockFile)
	}
	if c.Lock.Timeout == 0 {
		c.Lock.Timeout = DefaultLockTimeout
	}
	if c.Lock.TTL == 0 {
		c.Lock.TTL = DefaultLockTTL
	}
	if c.Lock.RedisAddr == "" {
		c.Lock.RedisAddr = DefaultRedisAddr
	}

	// Notify defaults
	if c.Notify.Username == "" {
		c.Notify.Username = DefaultUsername
	}
	if c.Notify.AvatarURL == "" {
		c.Notify.AvatarURL = DefaultAvatarURL
	}
	if c.Notify.Owner == "" {
		c.Notify.Owner = DefaultOwner
	}
	if c.Notify.SummaryColor == 0 {
		c.Notify.SummaryColor = DefaultSummaryColor
	}
	if c.Notify.Milestones == nil {
		c.Notify.Milestones = append([]int(nil), DefaultMilestones...)
	}

	// Ledger defaults
	if c.Ledger.Driver == "" {
		c.Ledger.Driver = DefaultLedgerDriver
	}
	if c.Ledger.SQLitePath == "" {
		c.Ledger.SQLitePath = filepath.Join(c.StateDir, DefaultLedgerFile)
	}
	c.Ledger.Postgres.applyDefaults()

	// Provider defaults
	if c.Etsy.BaseURL == "" {
		c.Etsy.BaseURL = DefaultEtsyBaseURL
	}
	if c.Etsy.TokenURL == "" {
		c.Etsy.TokenURL = DefaultEtsyTokenURL
	}
	if c.Etsy.SalesSource == "" {
		c.Etsy.SalesSource = DefaultEtsySalesSource
	}
	if c.Etsy.CountDelay == 0 {
		c.Etsy.CountDelay = DefaultEtsyCountDelay
	}
	if len(c.Etsy.States) == 0 {
		c.Etsy.States = append([]string(nil), DefaultEtsyStates...)
	}
	if c.Etsy.PageLimit == 0 {
		c.Etsy.PageLimit = DefaultEtsyPageLimit
	}

	if c.Square.BaseURL == "" {
		c.Square.BaseURL = DefaultSquareBaseURL
	}
	if c.Square.Version == "" {
		c.Square.Version = DefaultSquareVersion
	}
	if c.Square.PageLimit == 0 {
		c.Square.PageLimit = DefaultSquarePageLimit
	}
	if c.Square.MaxPages == 0 {
		c.Square.MaxPages = DefaultSquarePages
	}
	if c.Square.BackfillWindow == 0 {
		c.Square.BackfillWindow = DefaultBackfillWindow
	}

	if c.Shift4Shop.BaseURL == "" {
		c.Shift4Shop.BaseURL = DefaultShift4ShopBaseURL
	}
	if c.Shift4Shop.StatusFilter == "" {
		c.Shift4Shop.StatusFilter = DefaultStatusFilter
	}
	if len(c.Shift4Shop.IncompleteStatusIDs) == 0 {
		c.Shift4Shop.IncompleteStatusIDs = []int{StatusNotCompleted}
	}
	if c.Shift4Shop.PageLimit == 0 {
		c.Shift4Shop.PageLimit = DefaultShift4ShopLimit
	}
	if c.Shift4Shop.MaxPages == 0 {
		c.Shift4Shop.MaxPages = DefaultShift4ShopPages
	}
	if c.Shift4Shop.BackfillWindow == 0 {
		c.Shift4Shop.BackfillWindow = DefaultBackfillWindow
	}
}

func (db *DBConfig) applyDefaults() {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
}
