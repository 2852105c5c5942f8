package ledger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/database"
	"github.com/wacksbywarby/wacks/internal/model"
)

// saleNamespace seeds the deterministic sale ids.
var saleNamespace = uuid.MustParse("6f1c2b1e-5d4e-4f5a-9a57-7761636b7321")

// Entry is one ledger row.
type Entry struct {
	SaleID            uuid.UUID
	RunID             uuid.UUID
	Provider          string
	OrderID           string
	ListingID         string
	NumSold           int
	QuantityRemaining *int
	UnitPrice         *decimal.Decimal
	OccurredAt        time.Time // zero for inventory sales
	RecordedAt        time.Time
}

// Recorder appends entries to a ledger.
type Recorder interface {
	// Record stores entries and returns how many were new.
	Record(ctx context.Context, entries []Entry) (int, error)
	Close() error
}

// NewEntries builds ledger rows for the sales of one announcement. total is the sale count
// the announcement reached; together with the position in sales it keeps ids unique across
// runs that sell the same listing again.
func NewEntries(runID uuid.UUID, provider string, total int, sales []model.Sale, recordedAt time.Time) []Entry {
	entries := make([]Entry, 0, len(sales))
	for i, s := range sales {
		entries = append(entries, Entry{
			SaleID:            SaleID(provider, total, i, s),
			RunID:             runID,
			Provider:          provider,
			OrderID:           s.OrderID,
			ListingID:         s.ListingID,
			NumSold:           s.NumSold,
			QuantityRemaining: s.QuantityRemaining,
			UnitPrice:         s.UnitPrice,
			OccurredAt:        s.OccurredAt,
			RecordedAt:        recordedAt,
		})
	}
	return entries
}

// SaleID derives a stable id for a sale.
func SaleID(provider string, total, position int, s model.Sale) uuid.UUID {
	occurred := ""
	if !s.OccurredAt.IsZero() {
		occurred = s.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	name := strings.Join([]string{
		provider,
		strconv.Itoa(total),
		strconv.Itoa(position),
		s.OrderID,
		s.ListingID,
		strconv.Itoa(s.NumSold),
		occurred,
	}, "|")
	return uuid.NewSHA1(saleNamespace, []byte(name))
}

// Open returns the Recorder selected by cfg.Driver.
func Open(ctx context.Context, cfg config.LedgerConfig, logger *slog.Logger) (Recorder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case "", config.LedgerDriverNone:
		return Nop{}, nil
	case config.LedgerDriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, logger)
	case config.LedgerDriverPostgres:
		pool, err := database.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "connect ledger")
		}
		rec := NewPostgres(pool, logger)
		if err := rec.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return rec, nil
	default:
		return nil, errors.Newf("unknown ledger driver %q", cfg.Driver)
	}
}

// Nop discards entries.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(_ context.Context, entries []Entry) (int, error) { return 0, nil }

// Close implements Recorder.
func (Nop) Close() error { return nil }

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// nullablePrice maps a missing price to NULL.
func nullablePrice(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// nullableInt maps a missing quantity to NULL.
func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
