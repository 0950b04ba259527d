package models

import (
	"strconv"
	"strings"
)

// CatalogItem is a movie, tv show or person as returned by list, search and
// credit endpoints. Fields that do not apply to a record stay empty.
type CatalogItem struct {
	ID                 int       `json:"id"`
	Title              string    `json:"title,omitempty"`
	Name               string    `json:"name,omitempty"`
	MediaType          MediaType `json:"media_type,omitempty"`
	Overview           string    `json:"overview,omitempty"`
	PosterPath         string    `json:"poster_path,omitempty"`
	BackdropPath       string    `json:"backdrop_path,omitempty"`
	ProfilePath        string    `json:"profile_path,omitempty"`
	ReleaseDate        string    `json:"release_date,omitempty"`
	FirstAirDate       string    `json:"first_air_date,omitempty"`
	VoteAverage        float64   `json:"vote_average"`
	VoteCount          int       `json:"vote_count,omitempty"`
	Popularity         float64   `json:"popularity,omitempty"`
	GenreIDs           []int     `json:"genre_ids,omitempty"`
	KnownForDepartment string    `json:"known_for_department,omitempty"`
	Character          string    `json:"character,omitempty"`
	Job                string    `json:"job,omitempty"`
	Department         string    `json:"department,omitempty"`
}

// DisplayName returns the title for movies and the name for everything else.
func (c CatalogItem) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Date returns the release date, falling back to the first air date.
func (c CatalogItem) Date() string {
	if c.ReleaseDate != "" {
		return c.ReleaseDate
	}
	return c.FirstAirDate
}

// Year parses the leading year of Date.
func (c CatalogItem) Year() (int, bool) {
	return LeadingYear(c.Date())
}

// HasGenre reports whether any of the given genre ids is attached.
func (c CatalogItem) HasGenre(genres ...int) bool {
	for _, g := range c.GenreIDs {
		for _, want := range genres {
			if g == want {
				return true
			}
		}
	}
	return false
}

// LeadingYear parses the part of an ISO date before the first dash.
func LeadingYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Page is one page of a paginated catalog listing.
type Page struct {
	Results      []CatalogItem `json:"results"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// CreditType tells whether a filmography entry came from the cast or crew list.
type CreditType string

const (
	CreditCast CreditType = "cast"
	CreditCrew CreditType = "crew"
)

// FilmographyCredit is a combined credit tagged with its origin list and role.
type FilmographyCredit struct {
	CatalogItem
	CreditType CreditType `json:"credit_type"`
	Role       string     `json:"role,omitempty"`
}

// DecadeGroup holds the filmography credits released in one decade.
type DecadeGroup struct {
	Label   string              `json:"label"`
	Credits []FilmographyCredit `json:"credits"`
}
