package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/icco/moviq/lib/results"
	"github.com/icco/moviq/lib/tmdb"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

// PersonView is a person page: the raw catalog data plus everything derived
// from it.
type PersonView struct {
	models.PersonDetails
	ProfileURL      string                     `json:"profile_url"`
	Age             *int                       `json:"age"`
	BirthdayDisplay string                     `json:"birthday_display,omitempty"`
	SocialLinks     []models.SocialLink        `json:"social_links"`
	KnownFor        []models.CatalogItem       `json:"known_for"`
	Filmography     []models.FilmographyCredit `json:"filmography"`
	Decades         []models.DecadeGroup       `json:"decades"`
}

// BuildPersonView derives the person page from the catalog data.
func BuildPersonView(d models.PersonDetails, now time.Time) PersonView {
	v := PersonView{
		PersonDetails:   d,
		ProfileURL:      tmdb.ImageURL(d.Person.ProfilePath, tmdb.ImageProfile, ""),
		BirthdayDisplay: results.FormatBirthday(d.Person.Birthday, d.Person.Deathday, now),
		SocialLinks:     results.SocialLinks(d.ExternalIDs),
		KnownFor:        results.KnownFor(d.CombinedCredits.Cast, d.CombinedCredits.Crew, d.Person.KnownForDepartment),
		Filmography:     results.BuildFilmography(d.CombinedCredits.Cast, d.CombinedCredits.Crew),
	}
	if age, ok := results.Age(d.Person.Birthday, d.Person.Deathday, now); ok {
		v.Age = &age
	}
	v.Decades = results.GroupByDecade(v.Filmography)
	return v
}

func HandlePerson(c Catalog, logger *slog.Logger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := catalogID(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		details, err := c.PersonDetails(r.Context(), id)
		if err != nil {
			writeCatalogError(w, r, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, BuildPersonView(details, now()), logger)
	}
}
