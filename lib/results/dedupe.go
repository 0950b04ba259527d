// Package results turns fetched catalog pages into the deduplicated, sorted
// and paginated views served to clients. Everything here is pure.
package results

import "github.com/icco/moviq/models"

// MaxRecommendations caps the merged recommendation list.
const MaxRecommendations = 20

// MediaKey identifies a catalog item across media types.
type MediaKey struct {
	ID        int
	MediaType models.MediaType
}

// Dedupe drops every item whose key was already seen. The first occurrence
// wins and the order of survivors is preserved.
func Dedupe[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// DedupeByMedia dedupes on (id, media type), for mixed result sets such as
// multi search and filmography merges.
func DedupeByMedia(items []models.CatalogItem) []models.CatalogItem {
	return Dedupe(items, func(c models.CatalogItem) MediaKey {
		return MediaKey{ID: c.ID, MediaType: c.MediaType}
	})
}

// DedupeByID dedupes on id alone. In a mixed list the first media type seen
// for an id wins.
func DedupeByID(items []models.CatalogItem) []models.CatalogItem {
	return Dedupe(items, func(c models.CatalogItem) int { return c.ID })
}

// MergeRecommendations concatenates primary and fallback, keeps the first
// item per id, drops items without a poster and caps the result. An id is
// claimed by its first occurrence even when that item has no poster.
func MergeRecommendations(primary, fallback []models.CatalogItem) []models.CatalogItem {
	combined := make([]models.CatalogItem, 0, len(primary)+len(fallback))
	combined = append(combined, primary...)
	combined = append(combined, fallback...)

	out := make([]models.CatalogItem, 0, MaxRecommendations)
	for _, item := range DedupeByID(combined) {
		if item.PosterPath == "" {
			continue
		}
		out = append(out, item)
		if len(out) == MaxRecommendations {
			break
		}
	}
	return out
}

// FilterByGenre keeps items tagged with any of the genres. With no genres
// the input is returned unchanged.
func FilterByGenre(items []models.CatalogItem, genres ...int) []models.CatalogItem {
	if len(genres) == 0 {
		return items
	}
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.HasGenre(genres...) {
			out = append(out, item)
		}
	}
	return out
}

// FilterMediaTypes keeps items whose media type is one of allowed.
func FilterMediaTypes(items []models.CatalogItem, allowed ...models.MediaType) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		for _, m := range allowed {
			if item.MediaType == m {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// WithBackdrops keeps items that have a backdrop image.
func WithBackdrops(items []models.CatalogItem) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.BackdropPath != "" {
			out = append(out, item)
		}
	}
	return out
}
