package results

import (
	"testing"

	"github.com/icco/moviq/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilmographyCastWinsOverCrew(t *testing.T) {
	cast := []models.CatalogItem{{ID: 5, MediaType: models.MediaMovie, Character: "Hero", ReleaseDate: "2001-01-01"}}
	crew := []models.CatalogItem{{ID: 5, MediaType: models.MediaMovie, Job: "Producer", ReleaseDate: "2001-01-01"}}

	got := BuildFilmography(cast, crew)
	require.Len(t, got, 1)
	assert.Equal(t, models.CreditCast, got[0].CreditType)
	assert.Equal(t, "Hero", got[0].Role)
}

func TestBuildFilmographySortsNewestFirstWithUndatedLast(t *testing.T) {
	cast := []models.CatalogItem{
		{ID: 1, MediaType: models.MediaMovie, ReleaseDate: "1999-03-31"},
		{ID: 2, MediaType: models.MediaTV},
		{ID: 3, MediaType: models.MediaTV, FirstAirDate: "2008-01-20"},
	}
	crew := []models.CatalogItem{
		{ID: 4, MediaType: models.MediaMovie, ReleaseDate: "2019-05-01", Job: "Director"},
	}

	got := BuildFilmography(cast, crew)
	ids := make([]int, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{4, 3, 1, 2}, ids)
	assert.Equal(t, models.CreditCrew, got[0].CreditType)
	assert.Equal(t, "Director", got[0].Role)
}

func TestBuildFilmographyKeepsSameIDDifferentMedia(t *testing.T) {
	cast := []models.CatalogItem{
		{ID: 9, MediaType: models.MediaMovie},
		{ID: 9, MediaType: models.MediaTV},
	}
	assert.Len(t, BuildFilmography(cast, nil), 2)
}

func TestGroupByDecade(t *testing.T) {
	credits := BuildFilmography([]models.CatalogItem{
		{ID: 1, MediaType: models.MediaMovie, ReleaseDate: "1994-09-23"},
		{ID: 2, MediaType: models.MediaMovie, ReleaseDate: "2010-07-16"},
		{ID: 3, MediaType: models.MediaMovie},
		{ID: 4, MediaType: models.MediaMovie, ReleaseDate: "1999-12-31"},
		{ID: 5, MediaType: models.MediaTV, FirstAirDate: "garbage"},
	}, nil)

	groups := GroupByDecade(credits)
	labels := make([]string, 0, len(groups))
	for _, g := range groups {
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{"Unknown", "2010s", "1990s"}, labels)
	assert.Len(t, groups[0].Credits, 2)
	assert.Len(t, groups[2].Credits, 2)
	assert.Equal(t, 4, groups[2].Credits[0].ID)
}

func TestKnownFor(t *testing.T) {
	cast := []models.CatalogItem{
		{ID: 1, PosterPath: "a.jpg", VoteAverage: 6},
		{ID: 2, VoteAverage: 9.5},
		{ID: 3, PosterPath: "c.jpg", VoteAverage: 8},
	}
	crew := []models.CatalogItem{
		{ID: 4, PosterPath: "d.jpg", Job: "Director", VoteAverage: 7},
		{ID: 5, PosterPath: "e.jpg", Job: "Writer", VoteAverage: 9},
	}

	ids := func(items []models.CatalogItem) []int {
		out := make([]int, 0, len(items))
		for _, i := range items {
			out = append(out, i.ID)
		}
		return out
	}

	assert.Equal(t, []int{3, 1}, ids(KnownFor(cast, crew, "Acting")))
	assert.Equal(t, []int{4}, ids(KnownFor(cast, crew, "Directing")))
	assert.Equal(t, []int{5, 3, 4, 1}, ids(KnownFor(cast, crew, "Writing")))
}

func TestKnownForLimit(t *testing.T) {
	var cast []models.CatalogItem
	for i := 0; i < 25; i++ {
		cast = append(cast, models.CatalogItem{ID: i, PosterPath: "x.jpg", VoteAverage: float64(i)})
	}
	got := KnownFor(cast, nil, "Acting")
	require.Len(t, got, 10)
	assert.Equal(t, 24, got[0].ID)
}
