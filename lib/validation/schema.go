package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// WatchlistSchema describes the persisted watchlist blob. Unknown fields are
// allowed so older and newer writers can share a blob.
var WatchlistSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"id": {"type": ["integer", "string"]},
			"title": {"type": ["string", "null"]},
			"image": {"type": ["string", "null"]},
			"type": {"type": ["string", "null"]},
			"rating": {"type": ["number", "null"]},
			"year": {"type": ["string", "integer", "null"]},
			"watched": {"type": ["boolean", "null"]},
			"addedAt": {"type": ["string", "null"]}
		},
		"required": ["id"]
	}
}`

var watchlistSchemaLoader = gojsonschema.NewStringLoader(WatchlistSchema)

// ValidateWatchlistBlob checks a persisted watchlist against WatchlistSchema.
func ValidateWatchlistBlob(jsonData []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(watchlistSchemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate JSON schema: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("JSON validation failed: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
