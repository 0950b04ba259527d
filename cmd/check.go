package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/moviq/models"
)

type checkResult struct {
	Storage string `json:"storage"`
	Catalog string `json:"catalog"`
	Items   int    `json:"watchlist_items"`
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify storage and catalog connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath, appNeeds{watchlist: true, optionalCatalog: true})
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			res := checkResult{Storage: "ok", Catalog: "not configured", Items: a.watchlist.Count()}
			if err := a.storage.Ping(ctx); err != nil {
				a.logger.Error("Storage check failed", slog.Any("error", err))
				res.Storage = "error"
			}
			if a.catalog != nil {
				res.Catalog = "ok"
				if _, err := a.catalog.Genres(ctx, models.MediaMovie); err != nil {
					a.logger.Error("Catalog check failed", slog.Any("error", err))
					res.Catalog = "error"
				}
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
