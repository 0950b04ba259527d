package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/icco/moviq/lib/lock"
)

const (
	ownerLockKey     = "moviq-storage"
	ownerLockTimeout = 2 * time.Second
)

// File stores each key as a JSON file in a directory. The directory is
// owned by one process at a time.
type File struct {
	dir    string
	locker *lock.FileLock
	logger *slog.Logger
}

// OpenFile creates dir if needed and takes the ownership lock.
func OpenFile(ctx context.Context, dir, lockDir string, logger *slog.Logger) (*File, error) {
	if dir == "" {
		return nil, errors.New("file storage needs a directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if lockDir == "" {
		lockDir = dir
	}

	// Abandoned locks from crashed processes expire after a day.
	locker := lock.NewFileLock(lockDir, 24*time.Hour, logger)
	if err := locker.TryLock(ctx, ownerLockKey, ownerLockTimeout); err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
		}
		return nil, fmt.Errorf("failed to lock storage: %w", err)
	}

	logger.Info("Opened file storage", slog.String("dir", dir))
	return &File{dir: dir, locker: locker, logger: logger}, nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, bool, error) {
	// #nosec G304 - path is built from a sanitized key
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes to a temporary file and renames it over the old value so a
// crash never leaves a half-written blob.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, "."+fileName(key)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

func (f *File) Ping(context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("failed to stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", f.dir)
	}
	return nil
}

func (f *File) Close() error {
	return f.locker.Unlock(ownerLockKey)
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, fileName(key))
}

func fileName(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key) + ".json"
}
