package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/icco/moviq/lib/db"
	"github.com/icco/moviq/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLite stores values in the storage_entries table.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the database file at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite storage needs a database path")
	}
	gormDB, err := db.Open(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Opened sqlite storage", slog.String("path", path))
	return NewSQLite(gormDB), nil
}

// NewSQLite wraps an already migrated connection.
func NewSQLite(gormDB *gorm.DB) *SQLite {
	return &SQLite{db: gormDB}
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.StorageEntry
	err := s.db.WithContext(ctx).Where(&models.StorageEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	entry := models.StorageEntry{Key: key, Value: string(value), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}
	return sqlDB.Close()
}
