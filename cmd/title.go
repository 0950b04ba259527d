package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

// titlePage is everything shown for one title.
type titlePage struct {
	models.TitleDetails
	PosterURL       string                 `json:"poster_url"`
	Certification   string                 `json:"certification,omitempty"`
	Trailer         *models.Video          `json:"trailer"`
	Providers       *models.WatchProviders `json:"providers"`
	Recommendations []models.CatalogItem   `json:"recommendations"`
}

func catalogIDArg(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return id, nil
}

func newTitleCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "title <movie|tv> <id>",
		Short:   "Print details, trailer, providers and recommendations for a title",
		Example: `  moviq title movie 27205`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := validation.ParseTitleType(args[0])
			if err != nil {
				return err
			}
			id, err := catalogIDArg(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), *configPath, appNeeds{catalog: true})
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.catalog
			var page titlePage
			p := pool.New().WithErrors().WithContext(cmd.Context())
			p.Go(func(ctx context.Context) error {
				d, err := c.Details(ctx, mt, id)
				page.TitleDetails = d
				return err
			})
			p.Go(func(ctx context.Context) error {
				cert, err := c.Certification(ctx, mt, id)
				page.Certification = cert
				return err
			})
			p.Go(func(ctx context.Context) error {
				v, err := c.Trailer(ctx, mt, id)
				page.Trailer = v
				return err
			})
			p.Go(func(ctx context.Context) error {
				wp, err := c.WatchProviders(ctx, mt, id)
				page.Providers = wp
				return err
			})
			p.Go(func(ctx context.Context) error {
				recs, err := c.Recommendations(ctx, mt, id)
				page.Recommendations = recs
				return err
			})
			if err := p.Wait(); err != nil {
				return err
			}

			page.PosterURL = tmdb.ImageURL(page.Title.PosterPath, tmdb.ImagePoster, "")
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
}
