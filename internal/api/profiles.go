package api

import (
	"context"
	"net/url"

	"github.com/dei-tracker/web/internal/models"
)

func (c *Client) ListProfiles(ctx context.Context, params ListParams) (*models.Page[models.Profile], error) {
	body, err := c.get(ctx, "/profiles/", params.Values())
	if err != nil {
		return nil, err
	}
	return decodeList[models.Profile](body)
}

func (c *Client) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	body, err := c.get(ctx, "/profiles/"+segment(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[models.Profile](body)
}

// GetFullProfile returns the profile with its child records, already normalized.
func (c *Client) GetFullProfile(ctx context.Context, id string) (*models.FullProfile, error) {
	body, err := c.get(ctx, "/profiles/"+segment(id)+"/full", nil)
	if err != nil {
		return nil, err
	}
	profile, err := decodeItem[models.FullProfile](body)
	if err != nil {
		return nil, err
	}
	profile.Normalize()
	return profile, nil
}

// GetLatestProfile returns the company's most recent profile, normalized.
func (c *Client) GetLatestProfile(ctx context.Context, companyID string) (*models.FullProfile, error) {
	body, err := c.get(ctx, "/profiles/company/"+segment(companyID)+"/latest", nil)
	if err != nil {
		return nil, err
	}
	profile, err := decodeItem[models.FullProfile](body)
	if err != nil {
		return nil, err
	}
	profile.Normalize()
	return profile, nil
}

func (c *Client) GetAtRiskProfiles(ctx context.Context, limit int) ([]models.RankedProfile, error) {
	return c.ranked(ctx, "/profiles/ranked/at-risk", limit)
}

func (c *Client) GetTopCommittedProfiles(ctx context.Context, limit int) ([]models.RankedProfile, error) {
	return c.ranked(ctx, "/profiles/ranked/top-committed", limit)
}

func (c *Client) ranked(ctx context.Context, path string, limit int) ([]models.RankedProfile, error) {
	v := url.Values{}
	setInt(v, "limit", limit)

	body, err := c.get(ctx, path, v)
	if err != nil {
		return nil, err
	}
	return decodeSlice[models.RankedProfile](body)
}
