package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/icco/moviq/lib/feed"
	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

// maxFeedPages bounds how many pages one feed request may pull.
const maxFeedPages = 5

func HandleHero(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := c.Hero(r.Context())
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": items}, logger)
	}
}

func HandleTrending(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := validation.ParseMediaType(chi.URLParam(r, "type"),
			models.MediaAll, models.MediaMovie, models.MediaTV, models.MediaPerson)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		window := chi.URLParam(r, "window")
		if window != tmdb.WindowDay && window != tmdb.WindowWeek {
			validation.WriteError(w, fmt.Errorf("window must be day or week"), http.StatusBadRequest)
			return
		}
		page, err := validation.ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		p, err := c.Trending(r.Context(), mt, window, page)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p, logger)
	}
}

// HandleList serves a paginated movie or tv listing such as popular or top
// rated.
func HandleList(list func(ctx context.Context, mt models.MediaType, page int) (models.Page, error), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := validation.ParseTitleType(chi.URLParam(r, "type"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		page, err := validation.ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		p, err := list(r.Context(), mt, page)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p, logger)
	}
}

func HandlePopularPeople(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validation.ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		p, err := c.PopularPeople(r.Context(), page)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p, logger)
	}
}

func HandleSearch(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := validation.ParseMediaType(chi.URLParam(r, "type"),
			models.MediaMulti, models.MediaMovie, models.MediaTV, models.MediaPerson)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		term := strings.TrimSpace(q.Get("query"))
		if term == "" {
			validation.WriteError(w, fmt.Errorf("query is required"), http.StatusBadRequest)
			return
		}
		page, err := validation.ParsePage(q.Get("page"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		year, err := validation.ParseYear(q.Get("year"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		genre, err := validation.ParseOptionalInt("genre", q.Get("genre"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		sp := tmdb.SearchParams{MediaType: mt, Query: term, Year: year, Page: page}
		if genre > 0 {
			sp.Genres = []int{genre}
		}
		p, err := c.Search(r.Context(), sp)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p, logger)
	}
}

// discoverFilters reads the genre, year, sort_by and min_rating parameters.
func discoverFilters(r *http.Request) (genre, year int, sortBy string, minRating float64, err error) {
	q := r.URL.Query()
	if genre, err = validation.ParseOptionalInt("genre", q.Get("genre")); err != nil {
		return
	}
	if year, err = validation.ParseYear(q.Get("year")); err != nil {
		return
	}
	sortBy = q.Get("sort_by")
	if raw := q.Get("min_rating"); raw != "" {
		minRating, err = strconv.ParseFloat(raw, 64)
		if err != nil || minRating < 0 || minRating > 10 {
			err = fmt.Errorf("min_rating must be between 0 and 10")
			return
		}
	}
	return
}

func HandleDiscover(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := validation.ParseTitleType(chi.URLParam(r, "type"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		page, err := validation.ParsePage(r.URL.Query().Get("page"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		genre, year, sortBy, minRating, err := discoverFilters(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		p, err := c.Discover(r.Context(), tmdb.DiscoverParams{
			MediaType: mt,
			Genre:     genre,
			Year:      year,
			SortBy:    sortBy,
			MinRating: minRating,
			Page:      page,
		})
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, p, logger)
	}
}

// HandleFeed pages through a search or browse query and returns the
// accumulated, deduplicated view. A failed fetch still answers 200 with
// status "error" so clients can tell it apart from an empty result.
func HandleFeed(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		mt := models.MediaMulti
		if raw := q.Get("type"); raw != "" {
			parsed, err := validation.ParseMediaType(raw, models.MediaMulti, models.MediaMovie, models.MediaTV, models.MediaPerson)
			if err != nil {
				validation.WriteError(w, err, http.StatusBadRequest)
				return
			}
			mt = parsed
		}
		genre, year, sortBy, minRating, err := discoverFilters(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		pages := 1
		if raw := q.Get("pages"); raw != "" {
			pages, err = strconv.Atoi(raw)
			if err != nil || pages < 1 || pages > maxFeedPages {
				validation.WriteError(w, fmt.Errorf("pages must be between 1 and %d", maxFeedPages), http.StatusBadRequest)
				return
			}
		}

		query := feed.Query{
			MediaType: mt,
			Term:      q.Get("term"),
			Genre:     genre,
			Year:      year,
			SortBy:    sortBy,
			MinRating: minRating,
		}

		f := feed.New(c, logger)
		var view feed.View
		for i := 0; i < pages; i++ {
			view, err = f.LoadMore(r.Context(), query)
			if err != nil || !view.HasMore {
				break
			}
		}
		writeJSON(w, http.StatusOK, view, logger)
	}
}

func HandleGenres(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, err := validation.ParseTitleType(chi.URLParam(r, "type"))
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		genres, err := c.Genres(r.Context(), mt)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"genres": genres}, logger)
	}
}
