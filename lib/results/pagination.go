package results

import (
	"errors"
	"fmt"

	"github.com/icco/moviq/models"
)

var (
	// ErrKeyMismatch is returned when a page fetched for one query is
	// appended to an accumulator that now tracks another.
	ErrKeyMismatch = errors.New("page belongs to a different query")
	// ErrOutOfOrder is returned when a page does not directly follow the
	// last accumulated page.
	ErrOutOfOrder = errors.New("page is not the next page")
)

// HasNextPage reports whether the catalog has pages after p.
func HasNextPage(p models.Page) bool {
	return p.Page < p.TotalPages
}

// NextPage returns the page number following p, if any.
func NextPage(p models.Page) (int, bool) {
	if !HasNextPage(p) {
		return 0, false
	}
	return p.Page + 1, true
}

// Accumulator collects consecutive pages for one query key. Changing the key
// discards everything collected so far.
type Accumulator struct {
	key   string
	pages []models.Page
}

// NewAccumulator returns an empty accumulator for key.
func NewAccumulator(key string) *Accumulator {
	return &Accumulator{key: key}
}

func (a *Accumulator) Key() string {
	return a.key
}

// Sync points the accumulator at key, resetting it when the key changed.
// It reports whether a reset happened.
func (a *Accumulator) Sync(key string) bool {
	if key == a.key {
		return false
	}
	a.key = key
	a.pages = nil
	return true
}

// Reset drops all pages but keeps the key.
func (a *Accumulator) Reset() {
	a.pages = nil
}

// Append adds the next page. Pages must arrive in order starting at 1.
func (a *Accumulator) Append(key string, p models.Page) error {
	if key != a.key {
		return ErrKeyMismatch
	}
	if want := a.NextPage(); p.Page != want {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, p.Page, want)
	}
	a.pages = append(a.pages, p)
	return nil
}

// NextPage is the page number to fetch next.
func (a *Accumulator) NextPage() int {
	if len(a.pages) == 0 {
		return 1
	}
	return a.pages[len(a.pages)-1].Page + 1
}

// HasMore reports whether another fetch can yield results.
func (a *Accumulator) HasMore() bool {
	if len(a.pages) == 0 {
		return true
	}
	return HasNextPage(a.pages[len(a.pages)-1])
}

// Last returns the most recently appended page.
func (a *Accumulator) Last() (models.Page, bool) {
	if len(a.pages) == 0 {
		return models.Page{}, false
	}
	return a.pages[len(a.pages)-1], true
}

// PageCount is the number of pages collected.
func (a *Accumulator) PageCount() int {
	return len(a.pages)
}

// Items flattens every page and dedupes the result by id. Pages can overlap
// when titles move around the catalog ordering between fetches.
func (a *Accumulator) Items() []models.CatalogItem {
	var n int
	for _, p := range a.pages {
		n += len(p.Results)
	}
	all := make([]models.CatalogItem, 0, n)
	for _, p := range a.pages {
		all = append(all, p.Results...)
	}
	return DedupeByID(all)
}
