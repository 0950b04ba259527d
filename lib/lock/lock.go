// Package lock guards durable storage keys so that only one process owns a
// watchlist file at a time.
package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// ErrHeld is returned when the lock could not be taken before the timeout.
var ErrHeld = errors.New("lock is held by another process")

const retryInterval = 100 * time.Millisecond

// FileLock provides a simple file-based locking mechanism
type FileLock struct {
	dir        string
	staleAfter time.Duration
	logger     *slog.Logger
}

// NewFileLock creates lock files under dir. Locks whose owning process has
// exited, or that are older than staleAfter, are considered abandoned and
// removed.
func NewFileLock(dir string, staleAfter time.Duration, logger *slog.Logger) *FileLock {
	return &FileLock{
		dir:        dir,
		staleAfter: staleAfter,
		logger:     logger,
	}
}

// TryLock attempts to acquire a lock with the given key and timeout. It
// returns ErrHeld when the timeout passes without getting the lock.
func (fl *FileLock) TryLock(ctx context.Context, key string, timeout time.Duration) error {
	lockFile := fl.path(key)

	if err := os.MkdirAll(filepath.Dir(lockFile), 0o750); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		// #nosec G304 - lockFile is built from a sanitized key in path
		file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			if _, err := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid()); err != nil {
				_ = file.Close()
				_ = os.Remove(lockFile)
				return fmt.Errorf("failed to write to lock file: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to close lock file: %w", err)
			}
			fl.logger.Debug("Acquired lock", slog.String("key", key), slog.String("file", lockFile))
			return nil
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to create lock file: %w", err)
		}

		if fl.isStale(lockFile) {
			fl.logger.Warn("Removing stale lock file", slog.String("file", lockFile))
			if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
				fl.logger.Error("Failed to remove stale lock file", slog.String("file", lockFile), slog.Any("error", err))
			}
			continue
		}

		if !time.Now().Before(deadline) {
			return ErrHeld
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Unlock releases the lock for the given key
func (fl *FileLock) Unlock(key string) error {
	lockFile := fl.path(key)

	if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	fl.logger.Debug("Released lock", slog.String("key", key), slog.String("file", lockFile))
	return nil
}

func (fl *FileLock) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Clean(filepath.Join(fl.dir, safe+".lock"))
}

func (fl *FileLock) isStale(lockFile string) bool {
	// #nosec G304 - lockFile is built from a sanitized key in path
	data, err := os.ReadFile(lockFile)
	if err != nil {
		// Gone already; the next create attempt will tell.
		return false
	}
	if pid, ok := lockOwner(data); ok && !processAlive(pid) {
		return true
	}

	if fl.staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(lockFile)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) > fl.staleAfter
}

// lockOwner reads the pid from the second line of a lock file. A file that
// is still being written has no owner yet.
func lockOwner(data []byte) (int, bool) {
	lines := strings.Split(string(data), "\n")
	if len(lines) < 2 {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	// EPERM means the process exists but belongs to another user.
	return err == nil || errors.Is(err, os.ErrPermission)
}
