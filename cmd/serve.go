package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/moviq/handlers"
	"github.com/icco/moviq/lib/health"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long: `Starts the watchlist and catalog API.

Catalog routes are only mounted when TMDB_API_KEY is set.`,
		Example: `  # Start server on the configured port (default 8080)
  moviq serve

  # Start server on custom port
  moviq serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, appNeeds{watchlist: true, optionalCatalog: true})
			if err != nil {
				return err
			}
			defer a.Close()

			deps := handlers.Deps{
				Watchlist: a.watchlist,
				Health:    health.Check(a.storage, a.logger),
				Logger:    a.logger,
			}
			if a.catalog != nil {
				deps.Catalog = a.catalog
			} else {
				a.logger.Warn("TMDB_API_KEY not set, catalog routes disabled")
			}

			if port == "" {
				port = a.cfg.Server.Port
			}
			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.NewRouter(deps),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				a.logger.Info("Moviq API available", slog.String("addr", addr), slog.String("url", "http://localhost"+addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				a.logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Error("Server shutdown failed", slog.Any("error", err))
					return err
				}
				a.logger.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
