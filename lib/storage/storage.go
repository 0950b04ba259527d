// Package storage provides the durable named-value store that backs the
// watchlist. Each backend keeps whole values under string keys; there are
// no partial writes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrLocked is returned when another process owns the storage location.
var ErrLocked = errors.New("storage is locked by another process")

// Storage is a durable key/value store of opaque blobs.
type Storage interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Ping verifies the backend is usable.
	Ping(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	// Path is a directory for the file driver and a database file for sqlite.
	Path string
	// LockDir holds ownership locks for the file driver. Defaults to Path.
	LockDir string
}

// Open builds the backend described by opts.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Storage, error) {
	switch opts.Driver {
	case DriverFile:
		return OpenFile(ctx, opts.Path, opts.LockDir, logger)
	case DriverSQLite:
		return OpenSQLite(ctx, opts.Path, logger)
	case DriverMemory, "":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// Memory keeps values in process memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
