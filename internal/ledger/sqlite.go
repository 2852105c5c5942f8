package ledger

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sales (
	sale_id            TEXT PRIMARY KEY,
	run_id             TEXT NOT NULL,
	provider           TEXT NOT NULL,
	order_id           TEXT NOT NULL DEFAULT '',
	listing_id         TEXT NOT NULL,
	num_sold           INTEGER NOT NULL,
	quantity_remaining INTEGER,
	unit_price         TEXT,
	occurred_at        TEXT,
	recorded_at        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS sales_provider_recorded_idx ON sales (provider, recorded_at);
`

// SQLite records entries in a local SQLite file.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the ledger database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create ledger dir")
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create ledger schema")
	}
	return &SQLite{db: db, logger: logger}, nil
}

// Record inserts entries in one transaction, ignoring ids already present.
func (s *SQLite) Record(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (sale_id, run_id, provider, order_id, listing_id, num_sold,
			quantity_remaining, unit_price, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sale_id) DO NOTHING`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		var occurred any
		if !e.OccurredAt.IsZero() {
			occurred = e.OccurredAt.UTC().Format(time.RFC3339Nano)
		}
		res, err := stmt.ExecContext(ctx,
			e.SaleID.String(), e.RunID.String(), e.Provider, e.OrderID, e.ListingID, e.NumSold,
			nullableInt(e.QuantityRemaining), nullablePrice(e.UnitPrice),
			occurred, e.RecordedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, errors.Wrapf(err, "insert sale %s", e.SaleID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, errors.Wrap(err, "rows affected")
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}

	s.logger.Debug("recorded sales", "driver", "sqlite", "count", len(entries), "inserted", inserted)
	return inserted, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
