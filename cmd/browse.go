package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/icco/moviq/lib/feed"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

// feedFlags are shared by search and discover.
type feedFlags struct {
	kind      string
	genre     int
	year      int
	sortBy    string
	minRating float64
	pages     int
}

func (f *feedFlags) register(cmd *cobra.Command, defaultKind string) {
	cmd.Flags().StringVarP(&f.kind, "type", "t", defaultKind, "multi, movie, tv or person")
	cmd.Flags().IntVar(&f.genre, "genre", 0, "Genre id")
	cmd.Flags().IntVar(&f.year, "year", 0, "Release year")
	cmd.Flags().IntVarP(&f.pages, "pages", "n", 1, "Number of pages to load")
}

func (f *feedFlags) query(term string) (feed.Query, error) {
	mt, err := validation.ParseMediaType(f.kind, models.MediaMulti, models.MediaMovie, models.MediaTV, models.MediaPerson)
	if err != nil {
		return feed.Query{}, err
	}
	if f.year != 0 {
		if _, err := validation.ParseYear(strconv.Itoa(f.year)); err != nil {
			return feed.Query{}, err
		}
	}
	if f.pages < 1 {
		return feed.Query{}, errors.New("--pages must be at least 1")
	}
	if f.minRating < 0 || f.minRating > 10 {
		return feed.Query{}, errors.New("--min-rating must be between 0 and 10")
	}
	return feed.Query{
		MediaType: mt,
		Term:      term,
		Genre:     f.genre,
		Year:      f.year,
		SortBy:    f.sortBy,
		MinRating: f.minRating,
	}, nil
}

// runFeed loads up to f.pages pages and prints the accumulated view.
func runFeed(cmd *cobra.Command, configPath string, f *feedFlags, term string) error {
	q, err := f.query(term)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), configPath, appNeeds{catalog: true})
	if err != nil {
		return err
	}
	defer a.Close()

	fd := feed.New(a.catalog, a.logger)
	var view feed.View
	for i := 0; i < f.pages; i++ {
		view, err = fd.LoadMore(cmd.Context(), q)
		if err != nil {
			return err
		}
		if !view.HasMore {
			break
		}
	}
	return printJSON(cmd.OutOrStdout(), view)
}

// watchFeed reads one term per line from in, as a search box would see it
// while typing, and prints the first page for every term that settles.
// Terms shorter than feed.MinSearchLength browse instead. It returns once
// in is exhausted and the last term has settled.
func watchFeed(ctx context.Context, in io.Reader, out io.Writer, src feed.Source, base feed.Query, window time.Duration, logger *slog.Logger) error {
	d := feed.NewDebouncer(window)
	defer d.Stop()
	fd := feed.New(src, logger)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	var drained <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-drained:
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				drained = time.After(2 * window)
				continue
			}
			d.Input(line)
		case term := <-d.Settled():
			q := base
			q.Term = term
			view, err := fd.LoadMore(ctx, q)
			if errors.Is(err, feed.ErrStale) {
				continue
			}
			if err := printJSON(out, view); err != nil {
				return err
			}
		}
	}
}

func newSearchCmd(configPath *string) *cobra.Command {
	var (
		flags feedFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search movies, tv shows and people",
		Example: `  moviq search dune
  moviq search --type person "tilda swinton"
  moviq search --type movie --year 1984 dune --pages 2

  # Read terms from stdin as they are typed
  moviq search --watch < keystrokes.txt`,
		Args: func(cmd *cobra.Command, args []string) error {
			if watch {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				q, err := flags.query("")
				if err != nil {
					return err
				}
				a, err := openApp(cmd.Context(), *configPath, appNeeds{catalog: true})
				if err != nil {
					return err
				}
				defer a.Close()
				return watchFeed(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.catalog, q, feed.DebounceWindow, a.logger)
			}
			if len([]rune(args[0])) < feed.MinSearchLength {
				return fmt.Errorf("search term must be at least %d characters", feed.MinSearchLength)
			}
			return runFeed(cmd, *configPath, &flags, args[0])
		},
	}
	flags.register(cmd, string(models.MediaMulti))
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Read search terms line by line from stdin")

	return cmd
}

func newDiscoverCmd(configPath *string) *cobra.Command {
	var flags feedFlags

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Browse the catalog with filters",
		Example: `  moviq discover --type tv --genre 18 --min-rating 8
  moviq discover --type person`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, *configPath, &flags, "")
		},
	}
	flags.register(cmd, string(models.MediaMovie))
	cmd.Flags().StringVar(&flags.sortBy, "sort-by", "", "Sort order such as vote_average.desc")
	cmd.Flags().Float64Var(&flags.minRating, "min-rating", 0, "Minimum rating")

	return cmd
}
