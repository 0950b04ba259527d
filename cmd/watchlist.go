package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/lib/watchlist"
	"github.com/icco/moviq/models"
)

func newWatchlistCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watchlist",
		Aliases: []string{"wl"},
		Short:   "Manage the saved watchlist",
	}

	cmd.AddCommand(newWatchlistListCmd(configPath))
	cmd.AddCommand(newWatchlistAddCmd(configPath))
	cmd.AddCommand(newWatchlistToggleCmd(configPath))
	cmd.AddCommand(newWatchlistRemoveCmd(configPath))
	cmd.AddCommand(newWatchlistWatchedCmd(configPath))
	cmd.AddCommand(newWatchlistClearCmd(configPath))
	cmd.AddCommand(newWatchlistStatsCmd(configPath))

	return cmd
}

// withWatchlist opens the store for the duration of fn.
func withWatchlist(cmd *cobra.Command, configPath string, fn func(*watchlist.Store) error) error {
	a, err := openApp(cmd.Context(), configPath, appNeeds{watchlist: true})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.watchlist)
}

func newWatchlistListCmd(configPath *string) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the watchlist, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := watchlist.ParseFilter(filter)
			if !ok {
				return fmt.Errorf("filter must be all, watched or unwatched, got %q", filter)
			}
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				return printJSON(cmd.OutOrStdout(), s.Query(f))
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(watchlist.FilterAll), "all, watched or unwatched")

	return cmd
}

// itemFlags describes a title given on the command line.
type itemFlags struct {
	id     string
	kind   string
	title  string
	poster string
	rating float64
	year   string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Catalog id")
	cmd.Flags().StringVarP(&f.kind, "type", "t", string(models.MediaMovie), "movie or tv")
	cmd.Flags().StringVar(&f.title, "title", "", "Display title")
	cmd.Flags().StringVar(&f.poster, "poster", "", "Poster path or URL")
	cmd.Flags().Float64Var(&f.rating, "rating", 0, "Rating out of 10")
	cmd.Flags().StringVar(&f.year, "year", "", "Release year or date")
	_ = cmd.MarkFlagRequired("id")
}

func (f *itemFlags) input() (watchlist.Input, error) {
	mt, err := validation.ParseTitleType(f.kind)
	if err != nil {
		return nil, err
	}
	id := models.ParseID(f.id)
	if id == "" {
		return nil, errors.New("--id is required")
	}
	if mt == models.MediaTV {
		return watchlist.TVInput{ID: id, Name: f.title, PosterPath: f.poster, VoteAverage: f.rating, FirstAirDate: f.year}, nil
	}
	return watchlist.MovieInput{ID: id, Title: f.title, PosterPath: f.poster, VoteAverage: f.rating, ReleaseDate: f.year}, nil
}

func newWatchlistAddCmd(configPath *string) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a title",
		Example: `  moviq watchlist add --id 27205 --title Inception --year 2010 --rating 8.4
  moviq watchlist add --type tv --id 1396 --title "Breaking Bad"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input()
			if err != nil {
				return err
			}
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				s.Add(in)
				return printJSON(cmd.OutOrStdout(), s.Stats())
			})
		},
	}
	flags.register(cmd)

	return cmd
}

func newWatchlistToggleCmd(configPath *string) *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Save a title, or remove it when already saved",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input()
			if err != nil {
				return err
			}
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				added := s.Toggle(in)
				return printJSON(cmd.OutOrStdout(), map[string]any{"added": added, "count": s.Count()})
			})
		},
	}
	flags.register(cmd)

	return cmd
}

// identityArgs reads "<type> <id>" positional arguments.
func identityArgs(args []string) (models.ID, models.MediaType, error) {
	mt, err := validation.ParseTitleType(args[0])
	if err != nil {
		return "", "", err
	}
	id := models.ParseID(args[1])
	if id == "" {
		return "", "", errors.New("id is required")
	}
	return id, mt, nil
}

func newWatchlistRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <movie|tv> <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a title",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, mt, err := identityArgs(args)
			if err != nil {
				return err
			}
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				s.Remove(id, mt)
				return printJSON(cmd.OutOrStdout(), s.Stats())
			})
		},
	}
}

func newWatchlistWatchedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watched <movie|tv> <id>",
		Short: "Flip the watched flag of a saved title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, mt, err := identityArgs(args)
			if err != nil {
				return err
			}
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				watched, found := s.ToggleWatched(id, mt)
				if !found {
					return fmt.Errorf("%s %s is not in the watchlist", mt, id)
				}
				return printJSON(cmd.OutOrStdout(), map[string]bool{"watched": watched})
			})
		},
	}
}

func newWatchlistClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				s.Clear()
				return nil
			})
		},
	}
}

func newWatchlistStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print watchlist counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWatchlist(cmd, *configPath, func(s *watchlist.Store) error {
				return printJSON(cmd.OutOrStdout(), s.Stats())
			})
		},
	}
}
