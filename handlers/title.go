package handlers

import (
	"log/slog"
	"net/http"

	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

type titleResponse struct {
	models.TitleDetails
	PosterURL   string `json:"poster_url"`
	BackdropURL string `json:"backdrop_url"`
}

func HandleTitle(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		details, err := c.Details(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, titleResponse{
			TitleDetails: details,
			PosterURL:    tmdb.ImageURL(details.Title.PosterPath, tmdb.ImagePoster, ""),
			BackdropURL:  tmdb.ImageURL(details.Title.BackdropPath, tmdb.ImageBackdrop, ""),
		}, logger)
	}
}

func HandleRecommendations(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		items, err := c.Recommendations(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": items}, logger)
	}
}

// HandleTrailer answers with the chosen video, or null when there is none.
func HandleTrailer(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		video, err := c.Trailer(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"trailer": video}, logger)
	}
}

func HandleProviders(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		providers, err := c.WatchProviders(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": providers}, logger)
	}
}

func HandleCertification(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		cert, err := c.Certification(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"certification": cert}, logger)
	}
}

func HandleReviews(c Catalog, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mt, id, err := titleParams(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		reviews, err := c.Reviews(r.Context(), mt, id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": reviews}, logger)
	}
}
