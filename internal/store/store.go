package store

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/model"
)

// File names inside the state directory.
const (
	TimestampFile   = "timestamp.txt"
	NumSalesFile    = "num_sales.txt"
	SnapshotFile    = "data.json"
	LastSuccessFile = "last_success.txt"
	SquareCredsFile = "square_creds.json"
	EtsyCredsFile   = "etsy_creds.json"
)

// ErrNotFound marks reads of state that has never been written.
var ErrNotFound = errors.New("state not found")

// Store reads and writes the state files of one provider.
type Store struct {
	dir    string
	layout string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store rooted at dir. layout is the time layout of timestamp.txt.
func New(dir, layout string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if layout == "" {
		layout = time.RFC3339Nano
	}
	return &Store{dir: dir, layout: layout, logger: logger, now: time.Now}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of a state file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// ReadWatermark returns the stored watermark. Missing files yield a zero timestamp and a
// zero count.
func (s *Store) ReadWatermark() (model.Watermark, error) {
	var w model.Watermark

	raw, err := s.readText(TimestampFile)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return w, err
	case raw != "":
		ts, err := time.Parse(s.layout, raw)
		if err != nil {
			return w, errors.Wrapf(err, "parse %s", TimestampFile)
		}
		w.Timestamp = ts
	}

	raw, err = s.readText(NumSalesFile)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("no stored sale count, starting from zero", "path", s.Path(NumSalesFile))
	case err != nil:
		return w, err
	default:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return w, errors.Wrapf(err, "parse %s", NumSalesFile)
		}
		w.SaleCount = n
	}

	return w, nil
}

// WriteWatermark persists the watermark. A zero timestamp leaves timestamp.txt untouched.
func (s *Store) WriteWatermark(w model.Watermark) error {
	if w.HasTimestamp() {
		if err := s.writeFile(TimestampFile, []byte(w.Timestamp.Format(s.layout))); err != nil {
			return err
		}
	}
	return s.writeFile(NumSalesFile, []byte(strconv.Itoa(w.SaleCount)))
}

// ReadSnapshot returns the stored inventory snapshot, empty when none exists.
func (s *Store) ReadSnapshot() (model.InventorySnapshot, error) {
	snap := make(model.InventorySnapshot)
	err := s.ReadJSON(SnapshotFile, &snap)
	if errors.Is(err, ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WriteSnapshot persists an inventory snapshot.
func (s *Store) WriteSnapshot(snap model.InventorySnapshot) error {
	return s.WriteJSON(SnapshotFile, snap)
}

// ReadSuccess returns the time of the last successful run, zero when none is recorded.
func (s *Store) ReadSuccess() (time.Time, error) {
	raw, err := s.readText(LastSuccessFile)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse %s", LastSuccessFile)
	}
	return time.UnixMicro(int64(secs * 1e6)), nil
}

// WriteSuccess records the current time as the last successful run.
func (s *Store) WriteSuccess() error {
	now := s.now()
	secs := float64(now.UnixMicro()) / 1e6
	return s.writeFile(LastSuccessFile, []byte(strconv.FormatFloat(secs, 'f', 6, 64)))
}

// ReadJSON decodes a JSON state file into v. A missing file returns ErrNotFound.
func (s *Store) ReadJSON(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Mark(errors.Wrapf(err, "read %s", name), ErrNotFound)
	}
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", name)
	}
	return nil
}

// WriteJSON encodes v with four-space indentation and writes it atomically.
func (s *Store) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	return s.writeFile(name, data)
}

func (s *Store) readText(name string) (string, error) {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", errors.Mark(errors.Wrapf(err, "read %s", name), ErrNotFound)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	return strings.TrimSpace(string(data)), nil
}

// writeFile replaces name with data via a synced temporary file and a rename.
func (s *Store) writeFile(name string, data []byte) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create state dir")
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %s", name)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "sync %s", name)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", name)
	}
	if err = os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return errors.Wrapf(err, "rename %s", name)
	}

	s.logger.Debug("wrote state file", "path", s.Path(name), "bytes", len(data))
	return nil
}
