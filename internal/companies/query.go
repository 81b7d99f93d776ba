package companies

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/pkg/utils"
)

type View string

const (
	ViewGrid  View = "grid"
	ViewList  View = "list"
	ViewTable View = "table"
)

const (
	cardsPerPage = 12
	rowsPerPage  = 50
	// MaxFetchAll bounds the single request made when filtering locally.
	MaxFetchAll = 100
)

// Query is everything the companies page lets a user choose.
type Query struct {
	Search         string   `json:"search" validate:"max=200"`
	Industries     []string `json:"industries"`
	Countries      []string `json:"countries"`
	States         []string `json:"states"`
	MarketCapTiers []Tier   `json:"market_cap_tiers" validate:"dive,market_cap_tier"`
	Sort           string   `json:"sort" validate:"omitempty,oneof=name ticker industry revenue_usd created_at"`
	Order          string   `json:"order" validate:"omitempty,oneof=asc desc"`
	Page           int      `json:"page" validate:"min=0"`
	View           View     `json:"view" validate:"omitempty,oneof=grid list table"`
}

// ErrInvalidQuery wraps every query validation failure.
var ErrInvalidQuery = errors.New("invalid query")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("market_cap_tier", func(fl validator.FieldLevel) bool {
		return validTier(Tier(fl.Field().String()))
	})
	return v
}

func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

// Normalized fills in the page defaults: name ascending, page 1, grid view.
func (q Query) Normalized() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Sort == "" {
		q.Sort = "name"
	}
	if q.Order == "" {
		q.Order = "asc"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.View == "" {
		q.View = ViewGrid
	}
	return q
}

// FetchAll reports whether the query needs the fetch-all fallback, which is
// the case whenever a multi-value filter is active.
func (q Query) FetchAll() bool {
	return len(q.Industries) > 0 || len(q.Countries) > 0 || len(q.States) > 0 || len(q.MarketCapTiers) > 0
}

func (q Query) PerPage() int {
	if q.View == ViewTable {
		return rowsPerPage
	}
	return cardsPerPage
}

// Key identifies the fetched row set. Page and view only change the window,
// so they are not part of it.
func (q Query) Key() string {
	tiers := make([]string, len(q.MarketCapTiers))
	for i, t := range q.MarketCapTiers {
		tiers[i] = string(t)
	}
	parts := []string{
		"search=" + q.Search,
		"sort=" + q.Sort,
		"order=" + q.Order,
		"industries=" + joinSorted(q.Industries),
		"countries=" + joinSorted(q.Countries),
		"states=" + joinSorted(q.States),
		"tiers=" + joinSorted(tiers),
	}
	return utils.Digest(parts...)
}

func joinSorted(values []string) string {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1e")
}

// params builds the backend request. Fetch-all always asks for the first
// page at the bounded size and leaves filtering to Filter.
func (q Query) params(fetchAllSize int) api.CompanyListParams {
	p := api.CompanyListParams{
		Search: q.Search,
		Sort:   q.Sort,
		Order:  q.Order,
	}
	if q.FetchAll() {
		p.Page = 1
		p.PerPage = clampFetchAll(fetchAllSize)
		return p
	}
	p.Page = q.Page
	p.PerPage = q.PerPage()
	return p
}

func clampFetchAll(n int) int {
	if n <= 0 || n > MaxFetchAll {
		return MaxFetchAll
	}
	return n
}
