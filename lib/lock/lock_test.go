package lock

import (
	"context"
	"io"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTryLockExclusive(t *testing.T) {
	dir := t.TempDir()
	first := NewFileLock(dir, 0, testLogger())
	second := NewFileLock(dir, 0, testLogger())
	ctx := context.Background()

	require.NoError(t, first.TryLock(ctx, "moviq-watchlist", time.Second))
	err := second.TryLock(ctx, "moviq-watchlist", 150*time.Millisecond)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, first.Unlock("moviq-watchlist"))
	require.NoError(t, second.TryLock(ctx, "moviq-watchlist", time.Second))
	require.NoError(t, second.Unlock("moviq-watchlist"))
}

func TestTryLockRemovesStaleLock(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir, time.Minute, testLogger())

	path := fl.path("key")
	require.NoError(t, os.WriteFile(path, []byte("1\n1\n"), 0o600))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	require.NoError(t, fl.TryLock(context.Background(), "key", 200*time.Millisecond))
}

// exitedPID returns the pid of a child process that has already exited.
func exitedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	require.NoError(t, cmd.Run())
	return cmd.ProcessState.Pid()
}

func TestTryLockRemovesLockOfExitedProcess(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir, 24*time.Hour, testLogger())

	path := fl.path("key")
	content := fmt.Sprintf("%d\n%d\n", time.Now().Unix(), exitedPID(t))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	require.NoError(t, fl.TryLock(context.Background(), "key", 200*time.Millisecond))
}

func TestTryLockKeepsLockOfLiveProcess(t *testing.T) {
	dir := t.TempDir()
	fl := NewFileLock(dir, 24*time.Hour, testLogger())

	path := fl.path("key")
	content := fmt.Sprintf("%d\n%d\n", time.Now().Unix(), os.Getpid())
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	err := fl.TryLock(context.Background(), "key", 150*time.Millisecond)
	assert.ErrorIs(t, err, ErrHeld)
}

func TestLockOwner(t *testing.T) {
	pid, ok := lockOwner([]byte("1700000000\n4242\n"))
	assert.True(t, ok)
	assert.Equal(t, 4242, pid)

	for _, raw := range []string{"", "1700000000", "1700000000\n", "1700000000\nabc\n", "1\n0\n"} {
		_, ok := lockOwner([]byte(raw))
		assert.False(t, ok, "%q", raw)
	}
}

func TestTryLockHonoursContext(t *testing.T) {
	dir := t.TempDir()
	holder := NewFileLock(dir, 0, testLogger())
	require.NoError(t, holder.TryLock(context.Background(), "k", time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewFileLock(dir, 0, testLogger()).TryLock(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnlockMissingIsNoop(t *testing.T) {
	fl := NewFileLock(t.TempDir(), 0, testLogger())
	assert.NoError(t, fl.Unlock("never-locked"))
}

func TestPathSanitizesKey(t *testing.T) {
	fl := NewFileLock("/tmp/locks", 0, testLogger())
	assert.Equal(t, "/tmp/locks/__etc_passwd.lock", fl.path("../etc/passwd"))
}
