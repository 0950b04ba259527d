// Package handlers exposes the watchlist and the catalog over a JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/icco/moviq/lib/feed"
	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/lib/watchlist"
	"github.com/icco/moviq/models"
)

// Catalog is the subset of the catalog client the API serves from.
type Catalog interface {
	feed.Source
	Trending(ctx context.Context, mediaType models.MediaType, window string, page int) (models.Page, error)
	Hero(ctx context.Context) ([]models.CatalogItem, error)
	Popular(ctx context.Context, mediaType models.MediaType, page int) (models.Page, error)
	TopRated(ctx context.Context, mediaType models.MediaType, page int) (models.Page, error)
	Genres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error)
	Details(ctx context.Context, mediaType models.MediaType, id int) (models.TitleDetails, error)
	Trailer(ctx context.Context, mediaType models.MediaType, id int) (*models.Video, error)
	WatchProviders(ctx context.Context, mediaType models.MediaType, id int) (*models.WatchProviders, error)
	Certification(ctx context.Context, mediaType models.MediaType, id int) (string, error)
	Reviews(ctx context.Context, mediaType models.MediaType, id int) ([]models.Review, error)
	Recommendations(ctx context.Context, mediaType models.MediaType, id int) ([]models.CatalogItem, error)
	PersonDetails(ctx context.Context, id int) (models.PersonDetails, error)
}

// Deps is everything the routes need.
type Deps struct {
	Watchlist *watchlist.Store
	Catalog   Catalog
	Health    http.HandlerFunc
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewRouter wires every route.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(Recover(d.Logger))

	if d.Health != nil {
		r.Get("/healthcheck", d.Health)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", HandleWatchlist(d.Watchlist, d.Logger))
			r.Post("/", HandleWatchlistAdd(d.Watchlist, d.Now, d.Logger))
			r.Delete("/", HandleWatchlistClear(d.Watchlist, d.Logger))
			r.Get("/stats", HandleWatchlistStats(d.Watchlist, d.Logger))
			r.Post("/toggle", HandleWatchlistToggle(d.Watchlist, d.Now, d.Logger))
			r.Get("/events", HandleWatchlistEvents(d.Watchlist, d.Logger))
			r.Get("/{type}/{id}", HandleWatchlistItem(d.Watchlist, d.Logger))
			r.Delete("/{type}/{id}", HandleWatchlistRemove(d.Watchlist, d.Logger))
			r.Post("/{type}/{id}/watched", HandleWatchlistWatched(d.Watchlist, d.Logger))
		})

		if d.Catalog == nil {
			return
		}
		c := d.Catalog
		r.Get("/hero", HandleHero(c, d.Logger))
		r.Get("/trending/{type}/{window}", HandleTrending(c, d.Logger))
		r.Get("/popular/{type}", HandleList(c.Popular, d.Logger))
		r.Get("/top-rated/{type}", HandleList(c.TopRated, d.Logger))
		r.Get("/people/popular", HandlePopularPeople(c, d.Logger))
		r.Get("/search/{type}", HandleSearch(c, d.Logger))
		r.Get("/discover/{type}", HandleDiscover(c, d.Logger))
		r.Get("/feed", HandleFeed(c, d.Logger))
		r.Get("/genres/{type}", HandleGenres(c, d.Logger))
		r.Route("/title/{type}/{id}", func(r chi.Router) {
			r.Get("/", HandleTitle(c, d.Logger))
			r.Get("/recommendations", HandleRecommendations(c, d.Logger))
			r.Get("/trailer", HandleTrailer(c, d.Logger))
			r.Get("/providers", HandleProviders(c, d.Logger))
			r.Get("/certification", HandleCertification(c, d.Logger))
			r.Get("/reviews", HandleReviews(c, d.Logger))
		})
		r.Get("/person/{id}", HandlePerson(c, d.Logger, d.Now))
	})

	return r
}

// boundaryError is the body sent when a handler panics.
type boundaryError struct {
	Error   string   `json:"error"`
	Actions []string `json:"actions"`
}

// Recover turns a panic into a 500 that offers the client a retry and a way
// back.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("Recovered from panic",
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, boundaryError{
					Error:   "Something went wrong.",
					Actions: []string{"retry", "back"},
				}, logger)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

// writeCatalogError maps a catalog failure to a status code.
func writeCatalogError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	switch {
	case tmdb.IsNotFound(err):
		validation.WriteError(w, errors.New("not found"), http.StatusNotFound)
	case errors.Is(err, tmdb.ErrUnsupportedMediaType):
		validation.WriteError(w, err, http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		logger.Debug("Client went away", slog.String("path", r.URL.Path))
	default:
		logger.Error("Catalog request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		validation.WriteError(w, fmt.Errorf("catalog unavailable, please try again"), http.StatusBadGateway)
	}
}

func catalogID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return id, nil
}

// titleParams reads the {type} and {id} of a title route.
func titleParams(r *http.Request) (models.MediaType, int, error) {
	mt, err := validation.ParseTitleType(chi.URLParam(r, "type"))
	if err != nil {
		return "", 0, err
	}
	id, err := catalogID(r)
	if err != nil {
		return "", 0, err
	}
	return mt, id, nil
}
