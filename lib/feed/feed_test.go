package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/models"
)

type call struct {
	kind string
	sp   tmdb.SearchParams
	dp   tmdb.DiscoverParams
	page int
}

type fakeSource struct {
	mu         sync.Mutex
	calls      []call
	totalPages int
	err        error
	// gate, when set, blocks each fetch until a value is received.
	gate chan struct{}
}

func (s *fakeSource) page(n int, ids ...int) (models.Page, error) {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Page{}, s.err
	}
	p := models.Page{Page: n, TotalPages: s.totalPages, TotalResults: s.totalPages * len(ids)}
	for _, id := range ids {
		p.Results = append(p.Results, models.CatalogItem{ID: id, MediaType: models.MediaMovie})
	}
	return p, nil
}

func (s *fakeSource) record(c call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *fakeSource) Search(_ context.Context, sp tmdb.SearchParams) (models.Page, error) {
	s.record(call{kind: "search", sp: sp, page: sp.Page})
	return s.page(sp.Page, sp.Page*10, sp.Page*10+1)
}

func (s *fakeSource) Discover(_ context.Context, dp tmdb.DiscoverParams) (models.Page, error) {
	s.record(call{kind: "discover", dp: dp, page: dp.Page})
	// Page two overlaps page one by one item.
	return s.page(dp.Page, dp.Page*10-9, dp.Page*10, dp.Page*10+1)
}

func (s *fakeSource) PopularPeople(_ context.Context, page int) (models.Page, error) {
	s.record(call{kind: "people", page: page})
	return s.page(page, page)
}

func (s *fakeSource) lastCall() call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestFeed(src Source) *Feed {
	return New(src, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestQueryMode(t *testing.T) {
	assert.Equal(t, ModeBrowse, Query{Term: ""}.Mode())
	assert.Equal(t, ModeBrowse, Query{Term: " a "}.Mode())
	assert.Equal(t, ModeSearch, Query{Term: "ab"}.Mode())
	assert.Equal(t, ModeSearch, Query{Term: "é!"}.Mode())
}

func TestQueryKey(t *testing.T) {
	base := Query{MediaType: models.MediaMovie, Genre: 28}

	assert.Equal(t, base.Key(), Query{MediaType: models.MediaMovie, Genre: 28, SortBy: tmdb.DefaultSortBy}.Key())
	assert.Equal(t, base.Key(), Query{MediaType: models.MediaMovie, Genre: 28, Term: "x"}.Key(), "short term stays in browse")
	assert.NotEqual(t, base.Key(), Query{MediaType: models.MediaMovie, Genre: 12}.Key())
	assert.NotEqual(t, base.Key(), Query{MediaType: models.MediaTV, Genre: 28}.Key())
	assert.NotEqual(t, base.Key(), Query{MediaType: models.MediaMovie, Genre: 28, MinRating: 7}.Key())

	assert.Equal(t,
		Query{MediaType: models.MediaPerson, Term: "keanu", Year: 1999}.Key(),
		Query{MediaType: models.MediaPerson, Term: " keanu "}.Key(),
	)
	assert.Equal(t, Query{}.Key(), Query{MediaType: models.MediaMulti}.Key())
}

func TestLoadMoreAccumulatesUntilExhausted(t *testing.T) {
	src := &fakeSource{totalPages: 3}
	f := newTestFeed(src)
	ctx := context.Background()
	q := Query{MediaType: models.MediaMovie}

	v, err := f.LoadMore(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, 1, v.Page)
	assert.True(t, v.HasMore)
	assert.Len(t, v.Items, 3)

	v, err = f.LoadMore(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Page)
	assert.Len(t, v.Items, 5, "overlapping item is deduped")

	v, err = f.LoadMore(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Page)
	assert.False(t, v.HasMore)

	calls := src.callCount()
	v, err = f.LoadMore(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Page)
	assert.False(t, v.HasMore)
	assert.Equal(t, calls, src.callCount(), "no fetch past the last page")

	seen := map[int]bool{}
	for _, item := range v.Items {
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
}

func TestQueryChangeRestartsAtPageOne(t *testing.T) {
	src := &fakeSource{totalPages: 5}
	f := newTestFeed(src)
	ctx := context.Background()

	_, err := f.LoadMore(ctx, Query{MediaType: models.MediaMovie})
	require.NoError(t, err)
	_, err = f.LoadMore(ctx, Query{MediaType: models.MediaMovie})
	require.NoError(t, err)
	assert.Equal(t, 2, src.lastCall().page)

	v, err := f.LoadMore(ctx, Query{MediaType: models.MediaMovie, Year: 1999})
	require.NoError(t, err)
	assert.Equal(t, 1, src.lastCall().page)
	assert.Equal(t, 1999, src.lastCall().dp.Year)
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Items, 3)
}

func TestRouting(t *testing.T) {
	tests := []struct {
		name  string
		q     Query
		check func(t *testing.T, c call)
	}{
		{"search multi", Query{Term: "star wars", Genre: 28, Year: 1977}, func(t *testing.T, c call) {
			assert.Equal(t, "search", c.kind)
			assert.Equal(t, models.MediaMulti, c.sp.MediaType)
			assert.Equal(t, []int{28}, c.sp.Genres)
			assert.Equal(t, 1977, c.sp.Year)
		}},
		{"search person ignores filters", Query{MediaType: models.MediaPerson, Term: "keanu", Genre: 28, Year: 1999}, func(t *testing.T, c call) {
			assert.Equal(t, "search", c.kind)
			assert.Equal(t, models.MediaPerson, c.sp.MediaType)
			assert.Empty(t, c.sp.Genres)
			assert.Zero(t, c.sp.Year)
		}},
		{"search tv", Query{MediaType: models.MediaTV, Term: "lost"}, func(t *testing.T, c call) {
			assert.Equal(t, "search", c.kind)
			assert.Equal(t, models.MediaTV, c.sp.MediaType)
			assert.Equal(t, "lost", c.sp.Query)
		}},
		{"browse people", Query{MediaType: models.MediaPerson, Term: "k"}, func(t *testing.T, c call) {
			assert.Equal(t, "people", c.kind)
		}},
		{"browse tv", Query{MediaType: models.MediaTV, Year: 2008, MinRating: 8}, func(t *testing.T, c call) {
			assert.Equal(t, "discover", c.kind)
			assert.Equal(t, models.MediaTV, c.dp.MediaType)
			assert.Equal(t, 2008, c.dp.Year)
			assert.Equal(t, 8.0, c.dp.MinRating)
			assert.Equal(t, tmdb.DefaultSortBy, c.dp.SortBy)
		}},
		{"browse multi uses movies", Query{}, func(t *testing.T, c call) {
			assert.Equal(t, "discover", c.kind)
			assert.Equal(t, models.MediaMovie, c.dp.MediaType)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{totalPages: 1}
			f := newTestFeed(src)
			v, err := f.LoadMore(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.q.Mode(), v.Mode)
			tt.check(t, src.lastCall())
		})
	}
}

func TestEmptyAndErrorAreDistinct(t *testing.T) {
	f := newTestFeed(emptySource{})
	assert.Equal(t, StatusLoading, f.View().Status)

	v, err := f.LoadMore(context.Background(), Query{Term: "zzzz"})
	require.NoError(t, err)
	assert.Equal(t, StatusEmpty, v.Status)
	assert.Empty(t, v.Items)
	assert.Empty(t, v.Error)

	failing := &fakeSource{totalPages: 1, err: errors.New("catalog down")}
	f = newTestFeed(failing)
	v, err = f.LoadMore(context.Background(), Query{Term: "zzzz"})
	require.Error(t, err)
	assert.Equal(t, StatusError, v.Status)
	assert.Equal(t, "catalog down", v.Error)
}

type emptySource struct{}

func (emptySource) Search(context.Context, tmdb.SearchParams) (models.Page, error) {
	return models.Page{Page: 1, TotalPages: 0, TotalResults: 0}, nil
}

func (emptySource) Discover(context.Context, tmdb.DiscoverParams) (models.Page, error) {
	return models.Page{Page: 1}, nil
}

func (emptySource) PopularPeople(context.Context, int) (models.Page, error) {
	return models.Page{Page: 1}, nil
}

func TestErrorClearsOnRetry(t *testing.T) {
	src := &fakeSource{totalPages: 2, err: errors.New("boom")}
	f := newTestFeed(src)
	q := Query{MediaType: models.MediaMovie}

	_, err := f.LoadMore(context.Background(), q)
	require.Error(t, err)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()

	v, err := f.LoadMore(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, 1, v.Page)
}

func TestStaleResponseIsDropped(t *testing.T) {
	src := &fakeSource{totalPages: 3, gate: make(chan struct{})}
	f := newTestFeed(src)
	ctx := context.Background()

	oldQuery := Query{Term: "old query"}
	newQuery := Query{Term: "new query"}

	type result struct {
		v   View
		err error
	}
	oldDone := make(chan result, 1)
	go func() {
		v, err := f.LoadMore(ctx, oldQuery)
		oldDone <- result{v, err}
	}()

	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

	newDone := make(chan result, 1)
	go func() {
		v, err := f.LoadMore(ctx, newQuery)
		newDone <- result{v, err}
	}()
	require.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, time.Millisecond)

	src.gate <- struct{}{}
	src.gate <- struct{}{}

	var staleSeen bool
	for _, ch := range []chan result{oldDone, newDone} {
		r := <-ch
		if errors.Is(r.err, ErrStale) {
			staleSeen = true
		} else {
			require.NoError(t, r.err)
		}
	}
	assert.True(t, staleSeen)

	v := f.View()
	assert.Equal(t, newQuery.Key(), v.Key)
	assert.Equal(t, 1, v.Page)
}

func TestDuplicateInflightRequestDoesNotRefetch(t *testing.T) {
	src := &fakeSource{totalPages: 3, gate: make(chan struct{})}
	f := newTestFeed(src)
	q := Query{MediaType: models.MediaMovie}

	done := make(chan error, 1)
	go func() {
		_, err := f.LoadMore(context.Background(), q)
		done <- err
	}()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

	v, err := f.LoadMore(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, StatusLoading, v.Status)
	assert.Equal(t, 1, src.callCount())

	src.gate <- struct{}{}
	require.NoError(t, <-done)
	assert.Equal(t, StatusReady, f.View().Status)
}

func TestReset(t *testing.T) {
	src := &fakeSource{totalPages: 2}
	f := newTestFeed(src)
	_, err := f.LoadMore(context.Background(), Query{})
	require.NoError(t, err)

	f.Reset()
	v := f.View()
	assert.Equal(t, StatusLoading, v.Status)
	assert.Empty(t, v.Items)
}
