package transcript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"captioner/internal/logging"
)

// ErrLocked is returned when another process holds the transcript lock.
var ErrLocked = errors.New("transcript file is in use by another process")

// FileStore overwrites a transcript file on every Save.
type FileStore struct {
	path     string
	lockPath string
	lock     *flock.Flock
	logger   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// OpenFile acquires the lock for path and returns a store writing to it.
func OpenFile(path string, logger *slog.Logger) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transcript: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("transcript: ensure directory: %w", err)
	}
	lockPath := path + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("transcript: acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock: %s)", ErrLocked, lockPath)
	}
	return &FileStore{
		path:     path,
		lockPath: lockPath,
		lock:     lock,
		logger:   logging.NewComponentLogger(logger, "transcript"),
	}, nil
}

// Path returns the transcript file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save replaces the file with text, surrounding whitespace trimmed and a
// trailing newline added.
func (s *FileStore) Save(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("transcript: store closed")
	}
	payload := strings.TrimSpace(text) + "\n"
	if err := writeAtomic(s.path, []byte(payload)); err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	s.logger.Debug("transcript saved",
		logging.String("path", s.path),
		logging.Int("bytes", len(payload)),
	)
	return nil
}

// Reset removes any transcript left by a previous run.
func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("transcript: reset: %w", err)
	}
	return nil
}

// Close releases the lock. The transcript file is left in place.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.lock.Unlock(); err != nil {
		logging.WarnWithContext(s.logger, "failed to release transcript lock", "transcript_unlock_failed",
			logging.String("lock", s.lockPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next live session may report the transcript as in use"),
			logging.String(logging.FieldErrorHint, "remove the lock file if no captioner process is running"),
		)
		return fmt.Errorf("transcript: release lock: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
