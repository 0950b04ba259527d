package watchlist

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/icco/moviq/models"
)

// Input is anything that can be saved to the watchlist. It is implemented
// by MovieInput, TVInput and RawInput only; Normalize turns every variant
// into the one canonical WatchlistItem shape.
type Input interface {
	fields() inputFields
}

// MovieInput is a movie-shaped catalog record.
type MovieInput struct {
	ID          models.ID
	Title       string
	PosterPath  string
	VoteAverage float64
	ReleaseDate string
}

// TVInput is a tv-shaped catalog record.
type TVInput struct {
	ID           models.ID
	Name         string
	PosterPath   string
	VoteAverage  float64
	FirstAirDate string
}

// RawInput accepts the loosely shaped JSON clients send, where a title may
// arrive as title or name, a poster as poster_path or image, and so on.
type RawInput struct {
	ID           models.ID  `json:"id"`
	Title        string     `json:"title"`
	Name         string     `json:"name"`
	PosterPath   *string    `json:"poster_path"`
	Image        *string    `json:"image"`
	Type         string     `json:"type"`
	MediaType    string     `json:"media_type"`
	MediaTypeAlt string     `json:"mediaType"`
	VoteAverage  *float64   `json:"vote_average"`
	Rating       *float64   `json:"rating"`
	Year         flexString `json:"year"`
	ReleaseDate  string     `json:"release_date"`
	FirstAirDate string     `json:"first_air_date"`
}

// FromCatalog wraps a catalog item. Items from single-type listings carry
// no media type, so fallback names it.
func FromCatalog(c models.CatalogItem, fallback models.MediaType) Input {
	mt := c.MediaType
	if mt == "" {
		mt = fallback
	}
	if mt == models.MediaTV {
		return TVInput{ID: models.IntID(c.ID), Name: c.DisplayName(), PosterPath: c.PosterPath, VoteAverage: c.VoteAverage, FirstAirDate: c.Date()}
	}
	if mt == models.MediaPerson {
		return RawInput{ID: models.IntID(c.ID), Name: c.Name, Type: string(models.MediaPerson)}
	}
	return MovieInput{ID: models.IntID(c.ID), Title: c.DisplayName(), PosterPath: c.PosterPath, VoteAverage: c.VoteAverage, ReleaseDate: c.Date()}
}

type inputFields struct {
	id        models.ID
	title     string
	image     string
	mediaType string
	rating    float64
	year      string
}

func (m MovieInput) fields() inputFields {
	return inputFields{id: m.ID, title: m.Title, image: m.PosterPath, mediaType: string(models.MediaMovie), rating: m.VoteAverage, year: m.ReleaseDate}
}

func (t TVInput) fields() inputFields {
	return inputFields{id: t.ID, title: t.Name, image: t.PosterPath, mediaType: string(models.MediaTV), rating: t.VoteAverage, year: t.FirstAirDate}
}

func (r RawInput) fields() inputFields {
	f := inputFields{
		id:        r.ID,
		title:     firstNonEmpty(r.Title, r.Name),
		image:     firstNonEmpty(deref(r.PosterPath), deref(r.Image)),
		mediaType: firstNonEmpty(r.Type, r.MediaType, r.MediaTypeAlt),
		year:      firstNonEmpty(string(r.Year), r.ReleaseDate, r.FirstAirDate),
	}
	switch {
	case r.VoteAverage != nil && *r.VoteAverage != 0:
		f.rating = *r.VoteAverage
	case r.Rating != nil:
		f.rating = *r.Rating
	}
	return f
}

// Normalize builds the stored form of an input. Missing values default to
// an empty title, no image, zero rating, empty year and the movie type. It
// returns false for person records, which are never stored.
func Normalize(in Input, now time.Time) (models.WatchlistItem, bool) {
	f := in.fields()

	mt := models.MediaMovie
	if parsed, ok := models.ParseMediaType(f.mediaType); ok {
		switch {
		case parsed == models.MediaPerson:
			return models.WatchlistItem{}, false
		case parsed.IsTitle():
			mt = parsed
		}
	}

	item := models.WatchlistItem{
		ID:      f.id,
		Title:   f.title,
		Type:    mt,
		Rating:  f.rating,
		Year:    displayYear(f.year),
		AddedAt: now.UTC(),
	}
	if f.image != "" {
		image := f.image
		item.Image = &image
	}
	return item, true
}

// displayYear keeps just the year of a date such as "2010-07-16".
func displayYear(raw string) string {
	if year, ok := models.LeadingYear(raw); ok {
		return strconv.Itoa(year)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// flexString decodes a JSON string, number or null into text.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	}
	return nil
}
