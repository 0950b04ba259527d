package validation

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/icco/moviq/models"
)

// MaxCatalogPage is the highest page the catalog will serve.
const MaxCatalogPage = 500

// ParsePage reads an optional 1-based page number. Empty means page 1.
func ParsePage(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid page: %s", raw)
	}
	if page < 1 || page > MaxCatalogPage {
		return 0, fmt.Errorf("page must be between 1 and %d", MaxCatalogPage)
	}
	return page, nil
}

// ParseOptionalInt reads an optional positive integer such as a year or genre
// id. Empty means zero.
func ParseOptionalInt(name, raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %s", name, raw)
	}
	return n, nil
}

// ParseYear reads an optional release year.
func ParseYear(raw string) (int, error) {
	year, err := ParseOptionalInt("year", raw)
	if err != nil {
		return 0, err
	}
	if year != 0 && (year < 1870 || year > 2100) {
		return 0, fmt.Errorf("year out of range: %d", year)
	}
	return year, nil
}

// ParseTitleType accepts only movie and tv.
func ParseTitleType(raw string) (models.MediaType, error) {
	mt, ok := models.ParseMediaType(raw)
	if !ok || !mt.IsTitle() {
		return "", fmt.Errorf("media type must be movie or tv, got %q", raw)
	}
	return mt, nil
}

// ParseMediaType accepts any media type in allowed.
func ParseMediaType(raw string, allowed ...models.MediaType) (models.MediaType, error) {
	mt, ok := models.ParseMediaType(raw)
	if ok {
		for _, a := range allowed {
			if mt == a {
				return mt, nil
			}
		}
	}
	return "", fmt.Errorf("unsupported media type %q", raw)
}

// WriteError writes a validation error response to the HTTP response writer.
// It takes a response writer, error message, and HTTP status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
