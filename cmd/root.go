package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/icco/moviq/lib/cache"
	"github.com/icco/moviq/lib/config"
	"github.com/icco/moviq/lib/logging"
	"github.com/icco/moviq/lib/storage"
	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/watchlist"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "moviq",
		Short: "Browse movies, tv shows and people and keep a watchlist",
		Long: `Moviq keeps a personal watchlist of movies and tv shows and browses the
TMDB catalog: trending and popular listings, search, discovery filters,
title details and person pages.

Run "moviq serve" for the JSON API, or use the subcommands directly.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newWatchlistCmd(&configPath))
	cmd.AddCommand(newSearchCmd(&configPath))
	cmd.AddCommand(newDiscoverCmd(&configPath))
	cmd.AddCommand(newTitleCmd(&configPath))
	cmd.AddCommand(newPersonCmd(&configPath))
	cmd.AddCommand(newCheckCmd(&configPath))

	return cmd
}

// app holds what a command opened. Fields a command did not ask for are nil.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	storage   storage.Storage
	watchlist *watchlist.Store
	catalog   *tmdb.Client

	closers []io.Closer
}

type appNeeds struct {
	watchlist bool
	catalog   bool
	// optionalCatalog opens the catalog only when an API key is configured.
	optionalCatalog bool
}

func openApp(ctx context.Context, configPath string, needs appNeeds) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	wantCatalog := needs.catalog
	if err := cfg.RequireCatalog(); err != nil {
		if needs.catalog {
			return nil, err
		}
	} else if needs.optionalCatalog {
		wantCatalog = true
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	if needs.watchlist {
		st, err := storage.Open(ctx, storage.Options{
			Driver:  cfg.Storage.Driver,
			Path:    cfg.Storage.Path,
			LockDir: cfg.Storage.LockDir,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.storage = st
		a.closers = append(a.closers, st)
		a.watchlist = watchlist.New(ctx, st,
			watchlist.WithKey(cfg.Storage.Key),
			watchlist.WithLogger(logger),
		)
	}

	if wantCatalog {
		responses, err := openCache(ctx, cfg.Cache.RedisURL, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, responses)

		burst := max(int(cfg.TMDB.RequestsPerSecond), 1)
		a.catalog = tmdb.NewClient(cfg.TMDB.APIKey, logger,
			tmdb.WithBaseURL(cfg.TMDB.BaseURL),
			tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond, burst),
			tmdb.WithCache(responses),
		)
	}

	return a, nil
}

// openCache prefers redis when a URL is configured.
func openCache(ctx context.Context, redisURL string, logger *slog.Logger) (cache.Cache, error) {
	if redisURL == "" {
		return cache.NewMemory(), nil
	}
	r, err := cache.NewRedis(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Using redis response cache")
	return r, nil
}

// Close releases resources in reverse order of opening.
func (a *app) Close() error {
	if a.watchlist != nil {
		a.watchlist.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
