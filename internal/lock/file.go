package lock

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// File is an advisory flock(2) lock on a file.
type File struct {
	path    string
	timeout time.Duration
	poll    time.Duration
	logger  *slog.Logger

	mu sync.Mutex
	f  *os.File
}

// NewFile creates a file lock. The file is created on Lock if missing.
func NewFile(path string, timeout time.Duration, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: path, timeout: timeout, poll: defaultPoll, logger: logger}
}

// Lock takes an exclusive flock, retrying without blocking until the timeout.
func (l *File) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f != nil {
		return errors.New("file lock already held")
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return errors.Wrap(err, "create lock dir")
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return errors.Wrap(err, "open lock file")
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			l.f = f
			l.logger.Debug("acquired file lock", "path", l.path)
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return errors.Wrap(err, "flock")
		}
		if !time.Now().Before(deadline) {
			f.Close()
			return errors.Wrapf(ErrLocked, "%s", l.path)
		}
		if err := wait(ctx, l.poll); err != nil {
			f.Close()
			return err
		}
	}
}

// Unlock releases the flock and closes the file.
func (l *File) Unlock(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil

	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return errors.Wrap(err, "unlock")
	}
	return f.Close()
}
