package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sales (
	sale_id            UUID PRIMARY KEY,
	run_id             UUID NOT NULL,
	provider           TEXT NOT NULL,
	order_id           TEXT NOT NULL DEFAULT '',
	listing_id         TEXT NOT NULL,
	num_sold           INTEGER NOT NULL,
	quantity_remaining INTEGER,
	unit_price         NUMERIC(12, 2),
	occurred_at        TIMESTAMPTZ,
	recorded_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sales_provider_recorded_idx ON sales (provider, recorded_at);
`

// Postgres records entries in a PostgreSQL sales table.
type Postgres struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgres creates a Postgres recorder on an open pool. Close closes the pool.
func NewPostgres(db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

// EnsureSchema creates the sales table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresSchema); err != nil {
		return errors.Wrap(err, "create ledger schema")
	}
	return nil
}

// Record inserts entries using pgx.Batch with ON CONFLICT DO NOTHING.
func (p *Postgres) Record(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	start := time.Now()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO sales (sale_id, run_id, provider, order_id, listing_id, num_sold,
				quantity_remaining, unit_price, occurred_at, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (sale_id) DO NOTHING
		`, e.SaleID, e.RunID, e.Provider, e.OrderID, e.ListingID, e.NumSold,
			nullableInt(e.QuantityRemaining), nullablePrice(e.UnitPrice),
			nullableTime(e.OccurredAt), e.RecordedAt.UTC())
	}

	results := p.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range entries {
		ct, err := results.Exec()
		if err != nil {
			return inserted, errors.Wrap(err, "insert sale")
		}
		inserted += int(ct.RowsAffected())
	}

	p.logger.Debug("recorded sales",
		"driver", "postgres",
		"count", len(entries),
		"conflicts", len(entries)-inserted,
		"duration", time.Since(start),
	)
	return inserted, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
