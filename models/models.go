package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MediaType discriminates catalog entries.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	MediaPerson MediaType = "person"
	// MediaMulti is only meaningful for search and trending requests.
	MediaMulti MediaType = "multi"
	MediaAll   MediaType = "all"
)

// ParseMediaType accepts the lower-case wire names. "series" and "show" are
// treated as tv.
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return MediaMovie, true
	case "tv", "series", "show":
		return MediaTV, true
	case "person":
		return MediaPerson, true
	case "multi":
		return MediaMulti, true
	case "all":
		return MediaAll, true
	}
	return "", false
}

// IsTitle reports whether the media type refers to a movie or tv show.
func (m MediaType) IsTitle() bool {
	return m == MediaMovie || m == MediaTV
}

// ID is an opaque catalog identifier. The catalog hands out integers, but
// persisted data may carry them as strings, so both decode to the same value.
type ID string

// IntID converts a numeric catalog id.
func IntID(n int) ID {
	return ID(strconv.Itoa(n))
}

// ParseID trims surrounding whitespace from a textual id.
func ParseID(s string) ID {
	return ID(strings.TrimSpace(s))
}

func (id ID) String() string {
	return string(id)
}

// Int returns the numeric form of the id when it has one.
func (id ID) Int() (int, bool) {
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalJSON writes canonical integers as JSON numbers and anything else as
// a string.
func (id ID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if isCanonicalInt(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ParseID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}
	text := n.String()
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	if isCanonicalInt(text) {
		// Beyond int64, the literal is the identity.
		*id = ID(text)
		return nil
	}

	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		*id = ID(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*id = ID(text)
	return nil
}

// isCanonicalInt reports whether s is an integer literal with no sign other
// than a leading minus and no leading zeros.
func isCanonicalInt(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || (len(digits) > 1 && digits[0] == '0') || s == "-0" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StorageEntry is a single named value in the sqlite storage backend.
type StorageEntry struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
