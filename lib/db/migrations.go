package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icco/moviq/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the sqlite database at path and runs migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*gorm.DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := RunMigrations(ctx, gormDB, logger); err != nil {
		return nil, err
	}
	return gormDB, nil
}

// RunMigrations runs all database migrations
func RunMigrations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	enableSQLiteOptimizations(ctx, db, logger)

	if err := db.WithContext(ctx).AutoMigrate(&models.StorageEntry{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// enableSQLiteOptimizations applies pragmas; failures are logged and skipped.
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		} else {
			logger.Debug("Executed pragma", slog.String("pragma", pragma))
		}
	}
}
