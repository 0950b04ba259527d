package results

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/icco/moviq/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movie(id int, title string) models.CatalogItem {
	return models.CatalogItem{ID: id, Title: title, MediaType: models.MediaMovie, PosterPath: "/p" + title + ".jpg"}
}

func TestDedupeKeepsFirstSeenOrder(t *testing.T) {
	a := movie(1, "A")
	b := movie(2, "B")
	aDup := movie(1, "A-prime")
	c := movie(3, "C")

	got := DedupeByMedia([]models.CatalogItem{a, b, aDup, c})
	want := []models.CatalogItem{a, b, c}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestDedupeByMediaKeepsSameIDAcrossTypes(t *testing.T) {
	m := models.CatalogItem{ID: 7, MediaType: models.MediaMovie}
	tv := models.CatalogItem{ID: 7, MediaType: models.MediaTV}

	assert.Len(t, DedupeByMedia([]models.CatalogItem{m, tv}), 2)
	assert.Len(t, DedupeByID([]models.CatalogItem{m, tv}), 1)
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, DedupeByID(nil))
}

func TestMergeRecommendations(t *testing.T) {
	tests := []struct {
		name     string
		primary  []models.CatalogItem
		fallback []models.CatalogItem
		wantIDs  []int
	}{
		{
			name:     "drops items without poster",
			primary:  []models.CatalogItem{{ID: 10}},
			fallback: []models.CatalogItem{{ID: 11, PosterPath: "x.jpg"}},
			wantIDs:  []int{11},
		},
		{
			name:     "primary wins on conflict",
			primary:  []models.CatalogItem{{ID: 1, Title: "primary", PosterPath: "a.jpg"}},
			fallback: []models.CatalogItem{{ID: 1, Title: "fallback", PosterPath: "b.jpg"}, {ID: 2, PosterPath: "c.jpg"}},
			wantIDs:  []int{1, 2},
		},
		{
			name:     "posterless primary still claims its id",
			primary:  []models.CatalogItem{{ID: 5}},
			fallback: []models.CatalogItem{{ID: 5, PosterPath: "y.jpg"}},
			wantIDs:  []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeRecommendations(tt.primary, tt.fallback)
			ids := make([]int, 0, len(got))
			for _, item := range got {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMergeRecommendationsPrefersPrimaryFields(t *testing.T) {
	got := MergeRecommendations(
		[]models.CatalogItem{{ID: 1, Title: "primary", PosterPath: "a.jpg"}},
		[]models.CatalogItem{{ID: 1, Title: "fallback", PosterPath: "b.jpg"}},
	)
	require.Len(t, got, 1)
	assert.Equal(t, "primary", got[0].Title)
}

func TestMergeRecommendationsCapsLength(t *testing.T) {
	var primary, fallback []models.CatalogItem
	for i := 0; i < 15; i++ {
		primary = append(primary, models.CatalogItem{ID: i, PosterPath: "p.jpg"})
		fallback = append(fallback, models.CatalogItem{ID: 100 + i, PosterPath: "p.jpg"})
	}

	got := MergeRecommendations(primary, fallback)
	require.Len(t, got, MaxRecommendations)
	assert.Equal(t, 0, got[0].ID)
	assert.Equal(t, 104, got[MaxRecommendations-1].ID)
}

func TestFilterByGenre(t *testing.T) {
	items := []models.CatalogItem{
		{ID: 1, GenreIDs: []int{28, 12}},
		{ID: 2, GenreIDs: []int{35}},
		{ID: 3},
	}

	assert.Len(t, FilterByGenre(items), 3)
	got := FilterByGenre(items, 35, 99)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)
}

func TestFilterMediaTypes(t *testing.T) {
	items := []models.CatalogItem{
		{ID: 1, MediaType: models.MediaMovie},
		{ID: 2, MediaType: "collection"},
		{ID: 3, MediaType: models.MediaPerson},
	}
	got := FilterMediaTypes(items, models.MediaMovie, models.MediaTV, models.MediaPerson)
	assert.Len(t, got, 2)
}
