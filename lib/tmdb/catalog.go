package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/icco/moviq/lib/results"
	"github.com/icco/moviq/models"
)

// DefaultSortBy is the discover ordering when none is requested.
const DefaultSortBy = "popularity.desc"

// Time windows accepted by Trending.
const (
	WindowDay  = "day"
	WindowWeek = "week"
)

// Trending lists what is trending in window for all, movie, tv or person.
func (c *Client) Trending(ctx context.Context, mediaType models.MediaType, window string, page int) (models.Page, error) {
	switch mediaType {
	case models.MediaAll, models.MediaMovie, models.MediaTV, models.MediaPerson:
	default:
		return models.Page{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}
	if window == "" {
		window = WindowDay
	}
	if window != WindowDay && window != WindowWeek {
		return models.Page{}, fmt.Errorf("unsupported time window %q", window)
	}

	var p models.Page
	if err := c.get(ctx, fmt.Sprintf("/trending/%s/%s", mediaType, window), pageParams(page), 0, &p); err != nil {
		return models.Page{}, fmt.Errorf("failed to fetch trending %s: %w", mediaType, err)
	}
	return p, nil
}

// Hero returns today's trending titles that have a backdrop image.
func (c *Client) Hero(ctx context.Context) ([]models.CatalogItem, error) {
	p, err := c.Trending(ctx, models.MediaAll, WindowDay, 1)
	if err != nil {
		return nil, err
	}
	return results.WithBackdrops(p.Results), nil
}

func (c *Client) Popular(ctx context.Context, mediaType models.MediaType, page int) (models.Page, error) {
	return c.titleList(ctx, mediaType, "popular", page)
}

func (c *Client) TopRated(ctx context.Context, mediaType models.MediaType, page int) (models.Page, error) {
	return c.titleList(ctx, mediaType, "top_rated", page)
}

func (c *Client) titleList(ctx context.Context, mediaType models.MediaType, list string, page int) (models.Page, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return models.Page{}, err
	}

	var p models.Page
	if err := c.get(ctx, base+"/"+list, pageParams(page), 0, &p); err != nil {
		return models.Page{}, fmt.Errorf("failed to fetch %s %s: %w", list, mediaType, err)
	}
	return tagMediaType(p, mediaType), nil
}

func (c *Client) PopularPeople(ctx context.Context, page int) (models.Page, error) {
	var p models.Page
	if err := c.get(ctx, "/person/popular", pageParams(page), 0, &p); err != nil {
		return models.Page{}, fmt.Errorf("failed to fetch popular people: %w", err)
	}
	return tagMediaType(p, models.MediaPerson), nil
}

// SearchParams describes a text search.
type SearchParams struct {
	MediaType models.MediaType
	Query     string
	Year      int
	// Genres filters results to those carrying any of the ids. The API does
	// not support this for search, so it is applied to each page.
	Genres []int
	Page   int
}

// Search runs a text search over movie, tv, person or multi.
func (c *Client) Search(ctx context.Context, sp SearchParams) (models.Page, error) {
	switch sp.MediaType {
	case models.MediaMovie, models.MediaTV, models.MediaPerson, models.MediaMulti:
	case "":
		sp.MediaType = models.MediaMulti
	default:
		return models.Page{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, sp.MediaType)
	}

	params := pageParams(sp.Page)
	params.Set("query", sp.Query)
	if sp.Year > 0 && sp.MediaType != models.MediaPerson {
		params.Set("year", strconv.Itoa(sp.Year))
	}

	var p models.Page
	if err := c.get(ctx, "/search/"+string(sp.MediaType), params, 0, &p); err != nil {
		return models.Page{}, fmt.Errorf("failed to search %s: %w", sp.MediaType, err)
	}

	if sp.MediaType == models.MediaMulti {
		p.Results = results.FilterMediaTypes(p.Results, models.MediaMovie, models.MediaTV, models.MediaPerson)
	} else {
		p = tagMediaType(p, sp.MediaType)
	}
	if len(sp.Genres) > 0 {
		p.Results = results.FilterByGenre(p.Results, sp.Genres...)
	}
	return p, nil
}

// DiscoverParams describes a filtered browse of movies or tv.
type DiscoverParams struct {
	MediaType models.MediaType
	Genre     int
	Year      int
	SortBy    string
	MinRating float64
	Page      int
}

func (dp DiscoverParams) values() url.Values {
	params := pageParams(dp.Page)
	sortBy := dp.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	params.Set("sort_by", sortBy)
	params.Set("include_adult", "false")
	if dp.Genre > 0 {
		params.Set("with_genres", strconv.Itoa(dp.Genre))
	}
	if dp.Year > 0 {
		if dp.MediaType == models.MediaTV {
			params.Set("first_air_date_year", strconv.Itoa(dp.Year))
		} else {
			params.Set("primary_release_year", strconv.Itoa(dp.Year))
		}
	}
	if dp.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(dp.MinRating, 'f', -1, 64))
	}
	return params
}

func (c *Client) Discover(ctx context.Context, dp DiscoverParams) (models.Page, error) {
	if dp.MediaType == "" {
		dp.MediaType = models.MediaMovie
	}
	base, err := titlePath(dp.MediaType)
	if err != nil {
		return models.Page{}, err
	}

	var p models.Page
	if err := c.get(ctx, "/discover"+base, dp.values(), 0, &p); err != nil {
		return models.Page{}, fmt.Errorf("failed to discover %s: %w", dp.MediaType, err)
	}
	return tagMediaType(p, dp.MediaType), nil
}

// Genres lists the genres for movie or tv.
func (c *Client) Genres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre"+base+"/list", nil, TTLGenres, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch %s genres: %w", mediaType, err)
	}
	return resp.Genres, nil
}

// tagMediaType fills the media type of single-type listings, whose results
// do not carry one.
func tagMediaType(p models.Page, mediaType models.MediaType) models.Page {
	for i := range p.Results {
		if p.Results[i].MediaType == "" {
			p.Results[i].MediaType = mediaType
		}
	}
	return p
}
