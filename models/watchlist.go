package models

import "time"

// WatchlistItem is a title the user saved. Only Watched changes after
// creation.
type WatchlistItem struct {
	ID      ID        `json:"id"`
	Title   string    `json:"title"`
	Image   *string   `json:"image"`
	Type    MediaType `json:"type"`
	Rating  float64   `json:"rating"`
	Year    string    `json:"year"`
	Watched bool      `json:"watched"`
	AddedAt time.Time `json:"addedAt"`
}

// Key returns a stable identifier for the watchlist item combining media type and ID.
func (w WatchlistItem) Key() string {
	return WatchlistKey(w.ID, w.Type)
}

// WatchlistKey builds the uniqueness key used by the watchlist.
func WatchlistKey(id ID, mediaType MediaType) string {
	return string(mediaType) + ":" + string(id)
}

// WatchlistStats summarises the watchlist contents.
type WatchlistStats struct {
	Total     int `json:"total"`
	Watched   int `json:"watched"`
	Unwatched int `json:"unwatched"`
	Movies    int `json:"movies"`
	TVShows   int `json:"tvShows"`
}
