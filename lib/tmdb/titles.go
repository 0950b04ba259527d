package tmdb

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/sourcegraph/conc/pool"

	"github.com/icco/moviq/lib/results"
	"github.com/icco/moviq/models"
)

// Details fetches a title and its credits in parallel.
func (c *Client) Details(ctx context.Context, mediaType models.MediaType, id int) (models.TitleDetails, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return models.TitleDetails{}, err
	}
	path := base + "/" + strconv.Itoa(id)

	var (
		title   models.Title
		credits models.Credits
	)
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path, nil, TTLDetails, &title)
	})
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path+"/credits", nil, TTLDetails, &credits)
	})
	if err := p.Wait(); err != nil {
		return models.TitleDetails{}, fmt.Errorf("failed to fetch %s %d: %w", mediaType, id, err)
	}

	if title.MediaType == "" {
		title.MediaType = mediaType
	}
	return models.TitleDetails{Title: title, Cast: credits.Cast, Crew: credits.Crew}, nil
}

// Trailer picks the YouTube trailer of a title, falling back to its first
// video. It returns nil when the title has no videos.
func (c *Client) Trailer(ctx context.Context, mediaType models.MediaType, id int) (*models.Video, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []models.Video `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/%d/videos", base, id), nil, TTLDetails, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch videos for %s %d: %w", mediaType, id, err)
	}
	return PickTrailer(resp.Results), nil
}

// PickTrailer returns the first YouTube trailer, else the first video.
func PickTrailer(videos []models.Video) *models.Video {
	for i := range videos {
		if videos[i].Type == "Trailer" && videos[i].Site == "YouTube" {
			return &videos[i]
		}
	}
	if len(videos) > 0 {
		return &videos[0]
	}
	return nil
}

// WatchProviders returns the US providers of a title, or those of the first
// country listed when the US has none. It returns nil when no country has
// any.
func (c *Client) WatchProviders(ctx context.Context, mediaType models.MediaType, id int) (*models.WatchProviders, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results map[string]models.WatchProviders `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/%d/watch/providers", base, id), nil, TTLWatchProviders, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch watch providers for %s %d: %w", mediaType, id, err)
	}
	return PickProviders(resp.Results), nil
}

// PickProviders prefers the US entry and otherwise takes the
// alphabetically first country code.
func PickProviders(byCountry map[string]models.WatchProviders) *models.WatchProviders {
	if wp, ok := byCountry["US"]; ok {
		return &wp
	}
	for _, code := range slices.Sorted(maps.Keys(byCountry)) {
		wp := byCountry[code]
		return &wp
	}
	return nil
}

type releaseDates struct {
	Results []struct {
		Country      string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

type contentRatings struct {
	Results []struct {
		Country string `json:"iso_3166_1"`
		Rating  string `json:"rating"`
	} `json:"results"`
}

// Certification returns the age rating of a title, such as "PG-13" or
// "TV-MA". It prefers the US rating and returns "" when none is known.
func (c *Client) Certification(ctx context.Context, mediaType models.MediaType, id int) (string, error) {
	switch mediaType {
	case models.MediaMovie:
		var resp releaseDates
		if err := c.get(ctx, fmt.Sprintf("/movie/%d/release_dates", id), nil, TTLCertification, &resp); err != nil {
			return "", fmt.Errorf("failed to fetch release dates for movie %d: %w", id, err)
		}
		return movieCertification(resp), nil
	case models.MediaTV:
		var resp contentRatings
		if err := c.get(ctx, fmt.Sprintf("/tv/%d/content_ratings", id), nil, TTLCertification, &resp); err != nil {
			return "", fmt.Errorf("failed to fetch content ratings for tv %d: %w", id, err)
		}
		return tvCertification(resp), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
}

func movieCertification(resp releaseDates) string {
	firstCert := func(i int) string {
		for _, rd := range resp.Results[i].ReleaseDates {
			if rd.Certification != "" {
				return rd.Certification
			}
		}
		return ""
	}

	for i, r := range resp.Results {
		if r.Country == "US" {
			if cert := firstCert(i); cert != "" {
				return cert
			}
			break
		}
	}
	if len(resp.Results) > 0 {
		return firstCert(0)
	}
	return ""
}

func tvCertification(resp contentRatings) string {
	for _, r := range resp.Results {
		if r.Country == "US" {
			return r.Rating
		}
	}
	if len(resp.Results) > 0 {
		return resp.Results[0].Rating
	}
	return ""
}

func (c *Client) Reviews(ctx context.Context, mediaType models.MediaType, id int) ([]models.Review, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []models.Review `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/%d/reviews", base, id), nil, TTLReviews, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch reviews for %s %d: %w", mediaType, id, err)
	}
	return resp.Results, nil
}

// Recommendations merges the recommended and similar lists of a title.
func (c *Client) Recommendations(ctx context.Context, mediaType models.MediaType, id int) ([]models.CatalogItem, error) {
	base, err := titlePath(mediaType)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("%s/%d", base, id)

	var recommended, similar models.Page
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path+"/recommendations", nil, TTLRecommendations, &recommended)
	})
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path+"/similar", nil, TTLRecommendations, &similar)
	})
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations for %s %d: %w", mediaType, id, err)
	}

	merged := results.MergeRecommendations(recommended.Results, similar.Results)
	for i := range merged {
		if merged[i].MediaType == "" {
			merged[i].MediaType = mediaType
		}
	}
	return merged, nil
}
