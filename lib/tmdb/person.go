package tmdb

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/icco/moviq/models"
)

// PersonDetails fetches a person's profile, combined credits and external
// ids in parallel.
func (c *Client) PersonDetails(ctx context.Context, id int) (models.PersonDetails, error) {
	path := fmt.Sprintf("/person/%d", id)

	var details models.PersonDetails
	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path, nil, TTLPerson, &details.Person)
	})
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path+"/combined_credits", nil, TTLPerson, &details.CombinedCredits)
	})
	p.Go(func(ctx context.Context) error {
		return c.get(ctx, path+"/external_ids", nil, TTLPerson, &details.ExternalIDs)
	})
	if err := p.Wait(); err != nil {
		return models.PersonDetails{}, fmt.Errorf("failed to fetch person %d: %w", id, err)
	}
	return details, nil
}
