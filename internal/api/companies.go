package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dei-tracker/web/internal/models"
)

// CompanyListParams are the query parameters of GET /companies/. Zero values are omitted.
type CompanyListParams struct {
	Page      int
	PerPage   int
	Search    string
	Industry  string
	Country   string
	State     string
	DEIStatus string
	RiskLevel string
	Sort      string
	Order     string
}

func (p CompanyListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	setString(v, "search", p.Search)
	setString(v, "industry", p.Industry)
	setString(v, "country", p.Country)
	setString(v, "state", p.State)
	setString(v, "dei_status", p.DEIStatus)
	setString(v, "risk_level", p.RiskLevel)
	setString(v, "sort", p.Sort)
	setString(v, "order", p.Order)
	return v
}

// ListParams covers the simpler list endpoints. Filters are passed through as-is.
type ListParams struct {
	Page    int
	PerPage int
	Filters map[string]string
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
	for key, value := range p.Filters {
		setString(v, key, value)
	}
	return v
}

func setInt(v url.Values, key string, n int) {
	if n > 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}

func (c *Client) ListCompanies(ctx context.Context, params CompanyListParams) (*models.Page[models.Company], error) {
	body, err := c.get(ctx, "/companies/", params.Values())
	if err != nil {
		return nil, err
	}
	return decodeList[models.Company](body)
}

func (c *Client) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	body, err := c.get(ctx, "/companies/"+segment(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[models.Company](body)
}

func (c *Client) GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error) {
	body, err := c.get(ctx, "/companies/ticker/"+segment(ticker), nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[models.Company](body)
}

// Autocomplete backs the command palette.
func (c *Client) Autocomplete(ctx context.Context, query string, limit int) ([]models.CompanySuggestion, error) {
	v := url.Values{}
	v.Set("q", query)
	setInt(v, "limit", limit)

	body, err := c.get(ctx, "/companies/search/autocomplete", v)
	if err != nil {
		return nil, err
	}
	return decodeSlice[models.CompanySuggestion](body)
}

// AdvancedSearch forwards arbitrary filter parameters to the backend's advanced search.
func (c *Client) AdvancedSearch(ctx context.Context, params ListParams) (*models.Page[models.Company], error) {
	body, err := c.get(ctx, "/companies/search/advanced", params.Values())
	if err != nil {
		return nil, err
	}
	return decodeList[models.Company](body)
}

func (c *Client) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	body, err := c.get(ctx, "/companies/filters/options", nil)
	if err != nil {
		return nil, err
	}
	return decodeItem[models.FilterOptions](body)
}
