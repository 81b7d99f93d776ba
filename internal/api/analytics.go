package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/dei-tracker/web/internal/models"
)

func (c *Client) GetAnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	body, err := c.get(ctx, "/analytics/overview", nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[models.AnalyticsOverview](body)
}

func (c *Client) GetIndustryStats(ctx context.Context) ([]models.IndustryStats, error) {
	body, err := c.get(ctx, "/analytics/industries", nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[models.IndustryStats](body)
}

// CompareCompanies asks the backend to compare the given companies side by side.
func (c *Client) CompareCompanies(ctx context.Context, companyIDs []string) (models.Comparison, error) {
	v := url.Values{}
	v.Set("company_ids", strings.Join(companyIDs, ","))

	body, err := c.get(ctx, "/analytics/compare", v)
	if err != nil {
		return nil, err
	}
	cmp, err := decodeItem[models.Comparison](body)
	if err != nil {
		return nil, err
	}
	return *cmp, nil
}

func (c *Client) GetRiskSummary(ctx context.Context) ([]models.RiskSummary, error) {
	body, err := c.get(ctx, "/analytics/risks", nil)
	if err != nil {
		return nil, err
	}
	return decodeSlice[models.RiskSummary](body)
}
