package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/lib/watchlist"
	"github.com/icco/moviq/models"
)

const maxBodyBytes = 1 << 16

// watchlistIdentity reads the {type} and {id} of a watchlist route.
func watchlistIdentity(r *http.Request) (models.ID, models.MediaType, error) {
	mt, err := validation.ParseTitleType(chi.URLParam(r, "type"))
	if err != nil {
		return "", "", err
	}
	id := models.ParseID(chi.URLParam(r, "id"))
	if id == "" {
		return "", "", errors.New("id is required")
	}
	return id, mt, nil
}

func decodeInput(w http.ResponseWriter, r *http.Request) (watchlist.RawInput, error) {
	var in watchlist.RawInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		return in, fmt.Errorf("invalid request body: %w", err)
	}
	if in.ID == "" {
		return in, errors.New("id is required")
	}
	return in, nil
}

func HandleWatchlist(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, ok := watchlist.ParseFilter(r.URL.Query().Get("filter"))
		if !ok {
			validation.WriteError(w, fmt.Errorf("filter must be all, watched or unwatched"), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"filter": filter,
			"items":  store.Query(filter),
		}, logger)
	}
}

func HandleWatchlistStats(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Stats(), logger)
	}
}

// HandleWatchlistAdd saves the posted title. People are rejected since
// they are never stored.
func HandleWatchlistAdd(store *watchlist.Store, now func() time.Time, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(w, r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		preview, ok := watchlist.Normalize(in, now())
		if !ok {
			validation.WriteError(w, errors.New("only movies and tv shows can be saved"), http.StatusUnprocessableEntity)
			return
		}

		status := http.StatusCreated
		if store.IsPresent(preview.ID, preview.Type) {
			status = http.StatusOK
		}
		store.Add(in)

		item, _ := store.Get(preview.ID, preview.Type)
		writeJSON(w, status, item, logger)
	}
}

func HandleWatchlistToggle(store *watchlist.Store, now func() time.Time, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(w, r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		if _, ok := watchlist.Normalize(in, now()); !ok {
			validation.WriteError(w, errors.New("only movies and tv shows can be saved"), http.StatusUnprocessableEntity)
			return
		}

		added := store.Toggle(in)
		writeJSON(w, http.StatusOK, map[string]any{
			"added": added,
			"count": store.Count(),
		}, logger)
	}
}

func HandleWatchlistItem(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, mt, err := watchlistIdentity(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		item, ok := store.Get(id, mt)
		if !ok {
			validation.WriteError(w, errors.New("not in watchlist"), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, item, logger)
	}
}

func HandleWatchlistRemove(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, mt, err := watchlistIdentity(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		store.Remove(id, mt)
		logger.Debug("Removed watchlist item", slog.String("id", id.String()), slog.String("type", string(mt)))
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleWatchlistWatched(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, mt, err := watchlistIdentity(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		watched, found := store.ToggleWatched(id, mt)
		if !found {
			validation.WriteError(w, errors.New("not in watchlist"), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"watched": watched}, logger)
	}
}

func HandleWatchlistClear(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := store.Count()
		store.Clear()
		logger.Info("Cleared watchlist", slog.Int("removed", n))
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleWatchlistEvents streams a server-sent event with the full watchlist
// after every change.
func HandleWatchlistEvents(store *watchlist.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			validation.WriteError(w, errors.New("streaming unsupported"), http.StatusInternalServerError)
			return
		}

		updates, cancel := store.Subscribe(1)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case snap, ok := <-updates:
				if !ok {
					return
				}
				data, err := json.Marshal(snap.Items)
				if err != nil {
					logger.Error("Failed to encode watchlist event", slog.Any("error", err))
					continue
				}
				if _, err := fmt.Fprintf(w, "id: %d\nevent: watchlist\ndata: %s\n\n", snap.Version, data); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
