package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/auth"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
	"github.com/wacksbywarby/wacks/internal/provider/shift4shop"
	"github.com/wacksbywarby/wacks/internal/provider/square"
	"github.com/wacksbywarby/wacks/internal/store"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestTimestampLayout(t *testing.T) {
	if got := TimestampLayout(config.ProviderShift4Shop); got != shift4shop.Layout {
		t.Errorf("TimestampLayout(shift4shop) = %q, want %q", got, shift4shop.Layout)
	}
	if got := TimestampLayout(config.ProviderSquare); got != square.Layout {
		t.Errorf("TimestampLayout(square) = %q, want %q", got, square.Layout)
	}
}

func TestNewStore_SquareKeepsMilliseconds(t *testing.T) {
	cfg := testConfig(t, config.ProviderSquare)
	st := NewStore(cfg, nil)

	closed := time.Date(2024, 5, 1, 17, 45, 12, 345_000_000, time.UTC)
	if err := st.WriteWatermark(model.Watermark{Timestamp: closed, SaleCount: 11}); err != nil {
		t.Fatalf("WriteWatermark() error = %v", err)
	}
	w, err := st.ReadWatermark()
	if err != nil {
		t.Fatalf("ReadWatermark() error = %v", err)
	}
	if !w.Timestamp.Equal(closed) {
		t.Errorf("Timestamp = %v, want %v", w.Timestamp, closed)
	}
}

func testConfig(t *testing.T, provider string) *config.Config {
	t.Helper()
	return &config.Config{
		Instance: config.InstanceConfig{Name: "wacks"},
		Provider: provider,
		StateDir: t.TempDir(),
		API:      config.APIConfig{Timeout: 5 * time.Second, RetryBackoff: time.Millisecond},
	}
}

func TestNewSource(t *testing.T) {
	cfg := testConfig(t, config.ProviderShift4Shop)
	src, err := NewSource(cfg, NewStore(cfg, nil), nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if src.Name() != config.ProviderShift4Shop {
		t.Errorf("Name() = %q, want shift4shop", src.Name())
	}
}

func TestNewSource_MissingCredentials(t *testing.T) {
	for _, p := range []string{config.ProviderEtsy, config.ProviderSquare} {
		cfg := testConfig(t, p)
		_, err := NewSource(cfg, NewStore(cfg, nil), nil)
		if !errors.Is(err, ErrNoCredentials) {
			t.Errorf("NewSource(%s) error = %v, want ErrNoCredentials", p, err)
		}
	}
}

func TestNewSource_ReadsToken(t *testing.T) {
	cfg := testConfig(t, config.ProviderSquare)
	st := NewStore(cfg, nil)
	if err := st.WriteJSON(store.SquareCredsFile, auth.SquareCredentials{AccessToken: "EAAA"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	src, err := NewSource(cfg, st, nil)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if src.Name() != config.ProviderSquare {
		t.Errorf("Name() = %q, want square", src.Name())
	}
}

func TestNewSource_Unknown(t *testing.T) {
	cfg := testConfig(t, "bigcartel")
	if _, err := NewSource(cfg, NewStore(cfg, nil), nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRefreshCredentials_Fresh(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cfg := testConfig(t, config.ProviderSquare)
	st := NewStore(cfg, nil)
	creds := auth.SquareCredentials{AccessToken: "old", RefreshToken: "r", ExpiresAt: now.Add(20 * 24 * time.Hour)}
	if err := st.WriteJSON(store.SquareCredsFile, creds); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	refreshed, err := RefreshCredentials(context.Background(), cfg, st, false, now, slog.Default())
	if err != nil {
		t.Fatalf("RefreshCredentials() error = %v", err)
	}
	if refreshed {
		t.Error("refreshed = true, want false for a fresh token")
	}
}

func TestRefreshCredentials_Square(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			t.Errorf("Path = %s, want /oauth2/token", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new",
			"expires_at":   now.Add(30 * 24 * time.Hour).Format(time.RFC3339),
			"token_type":   "bearer",
		})
	}))
	defer server.Close()

	cfg := testConfig(t, config.ProviderSquare)
	cfg.Square = config.SquareConfig{BaseURL: server.URL, ClientID: "id", ClientSecret: "secret"}
	st := NewStore(cfg, nil)
	old := auth.SquareCredentials{AccessToken: "old", RefreshToken: "r", ExpiresAt: now.Add(24 * time.Hour), MerchantID: "M1"}
	if err := st.WriteJSON(store.SquareCredsFile, old); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	refreshed, err := RefreshCredentials(context.Background(), cfg, st, false, now, slog.Default())
	if err != nil {
		t.Fatalf("RefreshCredentials() error = %v", err)
	}
	if !refreshed {
		t.Fatal("refreshed = false, want true")
	}

	var got auth.SquareCredentials
	if err := st.ReadJSON(store.SquareCredsFile, &got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.AccessToken != "new" || got.RefreshToken != "r" || got.MerchantID != "M1" {
		t.Errorf("stored credentials = %+v", got)
	}
}

func TestRefreshCredentials_NoOAuth(t *testing.T) {
	cfg := testConfig(t, config.ProviderShift4Shop)
	if _, err := RefreshCredentials(context.Background(), cfg, NewStore(cfg, nil), true, time.Now(), slog.Default()); err == nil {
		t.Error("expected error for shift4shop")
	}
}

func TestNewRun(t *testing.T) {
	cfg := testConfig(t, config.ProviderShift4Shop)
	cfg.CatalogPath = filepath.Join(t.TempDir(), "werbies.json")
	cfg.Lock = config.LockConfig{Backend: config.LockBackendFile, Path: filepath.Join(cfg.StateDir, "wack.lock"), Timeout: time.Second}
	cfg.Ledger = config.LedgerConfig{Driver: config.LedgerDriverNone}

	run, err := NewRun(context.Background(), cfg, true, nil)
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	defer run.Close()

	if run.Source.Name() != config.ProviderShift4Shop {
		t.Errorf("Source.Name() = %q", run.Source.Name())
	}
}
