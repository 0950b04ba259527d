// Package feed accumulates paginated search and discover results for an
// infinitely scrolling list.
package feed

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/models"
)

// MinSearchLength is the shortest term that switches a feed to search.
const MinSearchLength = 2

type Mode string

const (
	ModeSearch Mode = "search"
	ModeBrowse Mode = "browse"
)

// Query is what the user is looking at. MediaType is one of movie, tv,
// person or multi; empty means multi.
type Query struct {
	MediaType models.MediaType `json:"media_type"`
	Term      string           `json:"term,omitempty"`
	Genre     int              `json:"genre,omitempty"`
	Year      int              `json:"year,omitempty"`
	SortBy    string           `json:"sort_by,omitempty"`
	MinRating float64          `json:"min_rating,omitempty"`
}

func (q Query) normalize() Query {
	q.Term = strings.TrimSpace(q.Term)
	if q.MediaType == "" || q.MediaType == models.MediaAll {
		q.MediaType = models.MediaMulti
	}
	if q.SortBy == "" {
		q.SortBy = tmdb.DefaultSortBy
	}
	return q
}

// Mode is search once the term is long enough and browse otherwise.
func (q Query) Mode() Mode {
	if utf8.RuneCountInString(strings.TrimSpace(q.Term)) >= MinSearchLength {
		return ModeSearch
	}
	return ModeBrowse
}

// Key identifies the result sequence the query produces. Parameters that
// do not affect the request are left out, so changing them keeps the
// accumulated pages.
func (q Query) Key() string {
	q = q.normalize()

	if q.Mode() == ModeSearch {
		if q.MediaType == models.MediaPerson {
			return "search|person|" + q.Term
		}
		return fmt.Sprintf("search|%s|%s|%d|%d", q.MediaType, q.Term, q.Year, q.Genre)
	}

	if q.MediaType == models.MediaPerson {
		return "browse|person"
	}
	return fmt.Sprintf("browse|%s|%d|%d|%s|%s", q.browseType(), q.Genre, q.Year, q.SortBy,
		strconv.FormatFloat(q.MinRating, 'f', -1, 64))
}

// browseType is the media type discover runs against. Multi has no
// discover listing, so it browses movies.
func (q Query) browseType() models.MediaType {
	if q.MediaType == models.MediaTV {
		return models.MediaTV
	}
	return models.MediaMovie
}
