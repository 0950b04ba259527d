package watchlist

import (
	"encoding/json"
	"testing"

	"github.com/icco/moviq/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTV(t *testing.T) {
	item, ok := Normalize(breakingBad(), fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.MediaTV, item.Type)
	assert.Equal(t, "Breaking Bad", item.Title)
	assert.Equal(t, "2008", item.Year)
	assert.Equal(t, fixedNow, item.AddedAt)
}

func TestNormalizeDefaults(t *testing.T) {
	item, ok := Normalize(RawInput{ID: "9"}, fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.MediaMovie, item.Type)
	assert.Equal(t, "", item.Title)
	assert.Nil(t, item.Image)
	assert.Zero(t, item.Rating)
	assert.Equal(t, "", item.Year)
	assert.False(t, item.Watched)
}

func TestNormalizeUnknownTypeIsMovie(t *testing.T) {
	item, ok := Normalize(RawInput{ID: "9", Type: "documentary"}, fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.MediaMovie, item.Type)
}

func TestRawInputFieldPrecedence(t *testing.T) {
	var raw RawInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 3,
		"name": "Fallback Name",
		"image": "/img.jpg",
		"mediaType": "tv",
		"vote_average": 0,
		"rating": 5.5,
		"first_air_date": "2015-02-01"
	}`), &raw))

	item, ok := Normalize(raw, fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.ID("3"), item.ID)
	assert.Equal(t, "Fallback Name", item.Title)
	require.NotNil(t, item.Image)
	assert.Equal(t, "/img.jpg", *item.Image)
	assert.Equal(t, models.MediaTV, item.Type)
	assert.Equal(t, 5.5, item.Rating)
	assert.Equal(t, "2015", item.Year)
}

func TestFromCatalog(t *testing.T) {
	movie := models.CatalogItem{ID: 1, Title: "Film", ReleaseDate: "1999-03-31", PosterPath: "/f.jpg", VoteAverage: 7}
	item, ok := Normalize(FromCatalog(movie, models.MediaMovie), fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.MediaMovie, item.Type)
	assert.Equal(t, "1999", item.Year)

	show := models.CatalogItem{ID: 2, Name: "Show", FirstAirDate: "2011-04-17"}
	item, ok = Normalize(FromCatalog(show, models.MediaTV), fixedNow)
	require.True(t, ok)
	assert.Equal(t, models.MediaTV, item.Type)
	assert.Equal(t, "Show", item.Title)

	person := models.CatalogItem{ID: 3, Name: "Actor", MediaType: models.MediaPerson}
	_, ok = Normalize(FromCatalog(person, models.MediaMovie), fixedNow)
	assert.False(t, ok)
}
