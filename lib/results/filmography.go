package results

import (
	"sort"
	"strconv"

	"github.com/icco/moviq/models"
)

const (
	// missingDate sorts undated credits after every dated one.
	missingDate = "1900"

	unknownDecade = "Unknown"
	knownForLimit = 10
)

// BuildFilmography tags cast and crew credits, merges them with cast first,
// dedupes by (id, media type) and sorts newest first.
func BuildFilmography(cast, crew []models.CatalogItem) []models.FilmographyCredit {
	all := make([]models.FilmographyCredit, 0, len(cast)+len(crew))
	for _, c := range cast {
		all = append(all, models.FilmographyCredit{CatalogItem: c, CreditType: models.CreditCast, Role: c.Character})
	}
	for _, c := range crew {
		all = append(all, models.FilmographyCredit{CatalogItem: c, CreditType: models.CreditCrew, Role: c.Job})
	}

	unique := Dedupe(all, func(c models.FilmographyCredit) MediaKey {
		return MediaKey{ID: c.ID, MediaType: c.MediaType}
	})

	sort.SliceStable(unique, func(i, j int) bool {
		return sortDate(unique[i].CatalogItem) > sortDate(unique[j].CatalogItem)
	})
	return unique
}

func sortDate(c models.CatalogItem) string {
	if d := c.Date(); d != "" {
		return d
	}
	return missingDate
}

// GroupByDecade buckets credits by decade label ("1990s"). Credits without a
// parseable year go to "Unknown". Groups are ordered by label, descending.
func GroupByDecade(credits []models.FilmographyCredit) []models.DecadeGroup {
	index := make(map[string]int)
	var groups []models.DecadeGroup

	for _, credit := range credits {
		label := unknownDecade
		if year, ok := credit.Year(); ok {
			label = strconv.Itoa(floorDecade(year)) + "s"
		}

		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, models.DecadeGroup{Label: label})
		}
		groups[i].Credits = append(groups[i].Credits, credit)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Label > groups[j].Label
	})
	return groups
}

func floorDecade(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

// KnownFor picks the ten best rated credits with a poster, drawing from the
// list that matches the person's department.
func KnownFor(cast, crew []models.CatalogItem, department string) []models.CatalogItem {
	var pool []models.CatalogItem
	switch department {
	case "Acting":
		pool = cast
	case "Directing":
		for _, c := range crew {
			if c.Job == "Director" {
				pool = append(pool, c)
			}
		}
	default:
		pool = append(append(pool, cast...), crew...)
	}

	out := make([]models.CatalogItem, 0, len(pool))
	for _, c := range pool {
		if c.PosterPath != "" {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VoteAverage > out[j].VoteAverage
	})
	if len(out) > knownForLimit {
		out = out[:knownForLimit]
	}
	return out
}
