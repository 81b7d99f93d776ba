package companies

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
)

// Fetcher is the slice of the API client the listing depends on.
type Fetcher interface {
	ListCompanies(ctx context.Context, params api.CompanyListParams) (*models.Page[models.Company], error)
}

// CompanyRow is a company as the listing renders it.
type CompanyRow struct {
	models.Company
	MarketCapTier Tier        `json:"market_cap_tier,omitempty"`
	DEIStatusTone models.Tone `json:"dei_status_tone"`
	RiskLevelTone models.Tone `json:"risk_level_tone"`
}

// NewRow attaches the derived tier and badge tones to a company.
func NewRow(c models.Company) CompanyRow {
	row := CompanyRow{
		Company:       c,
		DEIStatusTone: models.ToneNeutral,
		RiskLevelTone: models.ToneNeutral,
	}
	if tier, ok := tierOf(c.RevenueUSD); ok {
		row.MarketCapTier = tier
	}
	if c.DEIStatus != nil {
		row.DEIStatusTone = c.DEIStatus.Tone()
	}
	if c.RiskLevel != nil {
		row.RiskLevelTone = c.RiskLevel.Tone()
	}
	return row
}

func newRows(companies []models.Company) []CompanyRow {
	rows := make([]CompanyRow, len(companies))
	for i, c := range companies {
		rows[i] = NewRow(c)
	}
	return rows
}

// State is what the companies page renders.
type State struct {
	Query       Query        `json:"query"`
	Companies   []CompanyRow `json:"companies"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PerPage     int          `json:"per_page"`
	TotalPages  int          `json:"total_pages"`
	FetchAll    bool         `json:"fetch_all"`
	Loading     bool         `json:"loading"`
	LoadingMore bool         `json:"loading_more"`
	Error       string       `json:"error,omitempty"`
}

func initialState() State {
	return State{
		Query:      Query{}.Normalized(),
		Companies:  []CompanyRow{},
		Page:       1,
		PerPage:    cardsPerPage,
		TotalPages: 1,
	}
}

type pageResult struct {
	companies  []models.Company
	total      int
	totalPages int
}

// load runs one listing request. With fetch-all active it reuses cached rows
// when given and returns the full row set so callers can keep it.
func load(ctx context.Context, f Fetcher, fetchAllSize int, q Query, cached []models.Company) (pageResult, []models.Company, error) {
	if !q.FetchAll() {
		page, err := f.ListCompanies(ctx, q.params(fetchAllSize))
		if err != nil {
			metrics.ListingLoads.WithLabelValues("server", "error").Inc()
			return pageResult{}, nil, err
		}
		metrics.ListingLoads.WithLabelValues("server", "ok").Inc()
		return pageResult{companies: page.Data, total: page.Total, totalPages: page.TotalPages}, nil, nil
	}

	all := cached
	if all == nil {
		page, err := f.ListCompanies(ctx, q.params(fetchAllSize))
		if err != nil {
			metrics.ListingLoads.WithLabelValues("fetch_all", "error").Inc()
			return pageResult{}, nil, err
		}
		all = page.Data
		if all == nil {
			all = []models.Company{}
		}
	}

	metrics.ListingLoads.WithLabelValues("fetch_all", "ok").Inc()

	filtered := Filter(all, q)
	Sort(filtered, q.Sort, q.Order)
	window, totalPages := Window(filtered, q.Page, q.PerPage())

	return pageResult{companies: window, total: len(filtered), totalPages: totalPages}, all, nil
}

// Listing holds the state of one live companies page. It reuses fetched rows
// across page changes while the filters stay the same.
type Listing struct {
	fetcher      Fetcher
	fetchAllSize int
	onChange     func(State)

	mu      sync.Mutex
	state   State
	rows    []models.Company
	rowsKey string
}

// NewListing creates a listing. onChange, when set, is called with every
// state transition including the loading ones.
func NewListing(fetcher Fetcher, fetchAllSize int, onChange func(State)) *Listing {
	return &Listing{
		fetcher:      fetcher,
		fetchAllSize: clampFetchAll(fetchAllSize),
		onChange:     onChange,
		state:        initialState(),
	}
}

func (l *Listing) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Listing) snapshot() State {
	s := l.state
	s.Companies = append([]CompanyRow(nil), l.state.Companies...)
	if s.Companies == nil {
		s.Companies = []CompanyRow{}
	}
	return s
}

// Apply loads the page described by q. In table view a server-paged page
// after the first is appended to the rows already shown. Fetch-all pages
// are windows over one sorted row set and always replace the list.
func (l *Listing) Apply(ctx context.Context, q Query) (State, error) {
	q = q.Normalized()
	if err := q.Validate(); err != nil {
		return l.State(), err
	}
	return l.run(ctx, q, appends(q))
}

func appends(q Query) bool {
	return q.View == ViewTable && q.Page > 1 && !q.FetchAll()
}

// LoadMore requests the page after the current one. It does nothing on the
// last page or while another load is running.
func (l *Listing) LoadMore(ctx context.Context) (State, error) {
	l.mu.Lock()
	if l.state.Loading || l.state.LoadingMore || l.state.Page >= l.state.TotalPages {
		s := l.snapshot()
		l.mu.Unlock()
		return s, nil
	}
	q := l.state.Query
	q.Page = l.state.Page + 1
	l.mu.Unlock()

	return l.run(ctx, q, !q.FetchAll())
}

func (l *Listing) run(ctx context.Context, q Query, appendRows bool) (State, error) {
	key := q.Key()

	l.mu.Lock()
	var cached []models.Company
	if q.FetchAll() && key == l.rowsKey {
		cached = l.rows
	}
	l.state.Query = q
	l.state.FetchAll = q.FetchAll()
	l.state.Error = ""
	if appendRows {
		l.state.LoadingMore = true
	} else {
		l.state.Loading = true
	}
	l.notify()
	l.mu.Unlock()

	result, all, err := load(ctx, l.fetcher, l.fetchAllSize, q, cached)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Loading = false
	l.state.LoadingMore = false

	if err != nil {
		logger.Warn("Companies listing failed", zap.Bool("fetch_all", q.FetchAll()), zap.Error(err))
		l.state.Error = err.Error()
		if !appendRows {
			l.state.Companies = []CompanyRow{}
		}
		l.state.TotalPages = 1
		l.notify()
		return l.snapshot(), err
	}

	if q.FetchAll() {
		l.rows, l.rowsKey = all, key
	} else {
		l.rows, l.rowsKey = nil, ""
	}

	rows := newRows(result.companies)
	if appendRows {
		l.state.Companies = append(l.state.Companies, rows...)
	} else {
		l.state.Companies = rows
	}
	l.state.Page = q.Page
	l.state.PerPage = q.PerPage()
	l.state.Total = result.total
	l.state.TotalPages = result.totalPages
	l.notify()

	return l.snapshot(), nil
}

// notify must be called with mu held.
func (l *Listing) notify() {
	if l.onChange != nil {
		l.onChange(l.snapshot())
	}
}
