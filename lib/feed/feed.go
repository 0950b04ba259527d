package feed

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/icco/moviq/lib/results"
	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/models"
)

// ErrStale is returned when the query changed while a page was in flight.
// The page is discarded.
var ErrStale = errors.New("feed: response is stale")

// Source is the part of the catalog a feed reads from.
type Source interface {
	Search(ctx context.Context, sp tmdb.SearchParams) (models.Page, error)
	Discover(ctx context.Context, dp tmdb.DiscoverParams) (models.Page, error)
	PopularPeople(ctx context.Context, page int) (models.Page, error)
}

type Status string

const (
	StatusLoading Status = "loading"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// View is the accumulated state of a feed.
type View struct {
	Key          string               `json:"key"`
	Mode         Mode                 `json:"mode"`
	Status       Status               `json:"status"`
	Items        []models.CatalogItem `json:"items"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
	HasMore      bool                 `json:"has_more"`
	Error        string               `json:"error,omitempty"`

	Err error `json:"-"`
}

// Feed pages forward through the results of one query at a time. Changing
// the query starts over from page one.
type Feed struct {
	mu       sync.Mutex
	source   Source
	acc      *results.Accumulator
	mode     Mode
	err      error
	inflight string
	logger   *slog.Logger
}

func New(source Source, logger *slog.Logger) *Feed {
	return &Feed{
		source: source,
		acc:    results.NewAccumulator(""),
		mode:   ModeBrowse,
		logger: logger,
	}
}

// LoadMore fetches the next page of q. When q differs from the previous
// query the accumulated pages are dropped first. Fetch failures are
// reported both as the error and in the returned view. If q was replaced
// by another query before the page arrived, the page is dropped and
// ErrStale is returned with the view of the newer query.
func (f *Feed) LoadMore(ctx context.Context, q Query) (View, error) {
	q = q.normalize()
	key := q.Key()

	f.mu.Lock()
	if f.acc.Sync(key) {
		f.err = nil
		f.inflight = ""
		f.mode = q.Mode()
	}
	if f.acc.PageCount() > 0 && !f.acc.HasMore() {
		v := f.viewLocked()
		f.mu.Unlock()
		return v, nil
	}
	page := f.acc.NextPage()
	ticket := key + "#" + strconv.Itoa(page)
	if f.inflight == ticket {
		v := f.viewLocked()
		f.mu.Unlock()
		return v, nil
	}
	f.inflight = ticket
	f.mu.Unlock()

	p, err := f.fetch(ctx, q, page)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.acc.Key() != key || f.inflight != ticket {
		f.logger.Debug("Dropping stale feed page", slog.String("key", key), slog.Int("page", page))
		return f.viewLocked(), ErrStale
	}
	f.inflight = ""

	if err != nil {
		f.logger.Error("Failed to load feed page", slog.String("key", key), slog.Int("page", page), slog.Any("error", err))
		f.err = err
		return f.viewLocked(), err
	}

	if p.Page == 0 {
		p.Page = page
	}
	if err := f.acc.Append(key, p); err != nil {
		return f.viewLocked(), ErrStale
	}
	f.err = nil
	return f.viewLocked(), nil
}

// View returns the current state without fetching.
func (f *Feed) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

// Reset forgets the current query.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acc.Reset()
	f.acc.Sync("")
	f.err = nil
	f.inflight = ""
}

func (f *Feed) viewLocked() View {
	v := View{
		Key:     f.acc.Key(),
		Mode:    f.mode,
		Items:   f.acc.Items(),
		HasMore: f.acc.HasMore(),
		Err:     f.err,
	}
	if last, ok := f.acc.Last(); ok {
		v.Page = last.Page
		v.TotalPages = last.TotalPages
		v.TotalResults = last.TotalResults
	}

	switch {
	case f.err != nil:
		v.Status = StatusError
		v.Error = f.err.Error()
	case f.acc.PageCount() == 0:
		v.Status = StatusLoading
	case len(v.Items) == 0 && !v.HasMore:
		v.Status = StatusEmpty
	default:
		v.Status = StatusReady
	}
	return v
}

func (f *Feed) fetch(ctx context.Context, q Query, page int) (models.Page, error) {
	if q.Mode() == ModeSearch {
		sp := tmdb.SearchParams{MediaType: q.MediaType, Query: q.Term, Page: page}
		if q.MediaType != models.MediaPerson {
			sp.Year = q.Year
			if q.Genre > 0 {
				sp.Genres = []int{q.Genre}
			}
		}
		return f.source.Search(ctx, sp)
	}

	if q.MediaType == models.MediaPerson {
		return f.source.PopularPeople(ctx, page)
	}
	return f.source.Discover(ctx, tmdb.DiscoverParams{
		MediaType: q.browseType(),
		Genre:     q.Genre,
		Year:      q.Year,
		SortBy:    q.SortBy,
		MinRating: q.MinRating,
		Page:      page,
	})
}
