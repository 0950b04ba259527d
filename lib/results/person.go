package results

import (
	"fmt"
	"time"

	"github.com/icco/moviq/models"
)

const dateLayout = "2006-01-02"

// Age computes a person's age at their death, or now when they are alive.
// It returns false when no usable birthday is known.
func Age(birthday, deathday string, now time.Time) (int, bool) {
	if birthday == "" {
		return 0, false
	}
	born, err := time.Parse(dateLayout, birthday)
	if err != nil {
		return 0, false
	}

	end := now
	if deathday != "" {
		if died, err := time.Parse(dateLayout, deathday); err == nil {
			end = died
		}
	}

	age := end.Year() - born.Year()
	if end.Month() < born.Month() || (end.Month() == born.Month() && end.Day() < born.Day()) {
		age--
	}
	return age, true
}

// FormatBirthday renders "January 2, 2006 (Age 42)", or "(Died at age 42)"
// when a deathday is set. A zero age drops the suffix.
func FormatBirthday(birthday, deathday string, now time.Time) string {
	born, err := time.Parse(dateLayout, birthday)
	if err != nil {
		return ""
	}
	formatted := born.Format("January 2, 2006")

	age, ok := Age(birthday, deathday, now)
	if !ok || age == 0 {
		return formatted
	}
	if deathday != "" {
		return fmt.Sprintf("%s (Died at age %d)", formatted, age)
	}
	return fmt.Sprintf("%s (Age %d)", formatted, age)
}

// SocialLinks builds profile links for the external ids that are set.
func SocialLinks(ids models.ExternalIDs) []models.SocialLink {
	var links []models.SocialLink
	if ids.IMDbID != "" {
		links = append(links, models.SocialLink{Name: "IMDb", URL: "https://www.imdb.com/name/" + ids.IMDbID, Icon: "ExternalLink"})
	}
	if ids.InstagramID != "" {
		links = append(links, models.SocialLink{Name: "Instagram", URL: "https://www.instagram.com/" + ids.InstagramID, Icon: "Instagram"})
	}
	if ids.TwitterID != "" {
		links = append(links, models.SocialLink{Name: "Twitter", URL: "https://twitter.com/" + ids.TwitterID, Icon: "Twitter"})
	}
	return links
}
