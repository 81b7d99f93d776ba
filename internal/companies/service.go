package companies

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/metrics"
	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
)

// Service answers one-shot listing requests. Fetch-all row sets are kept in
// the session store so moving between pages of the same filter session does
// not call the backend again.
type Service struct {
	fetcher      Fetcher
	store        SessionStore
	fetchAllSize int
	ttl          time.Duration
}

func NewService(fetcher Fetcher, store SessionStore, fetchAllSize int, ttl time.Duration) *Service {
	if store == nil {
		store = NewMemoryStore(DefaultSessionCapacity)
	}
	return &Service{
		fetcher:      fetcher,
		store:        store,
		fetchAllSize: clampFetchAll(fetchAllSize),
		ttl:          ttl,
	}
}

// Page returns the listing state for q. On failure the returned state
// carries the error message, an empty list and a single page.
func (s *Service) Page(ctx context.Context, q Query) (State, error) {
	q = q.Normalized()
	state := initialState()
	state.Query = q
	state.Page = q.Page
	state.PerPage = q.PerPage()
	state.FetchAll = q.FetchAll()

	if err := q.Validate(); err != nil {
		state.Error = err.Error()
		return state, err
	}

	var cached []models.Company
	key := q.Key()
	if q.FetchAll() {
		cached = s.lookup(ctx, key)
	}

	result, all, err := load(ctx, s.fetcher, s.fetchAllSize, q, cached)
	if err != nil {
		state.Error = err.Error()
		return state, err
	}

	if q.FetchAll() && cached == nil {
		if err := s.store.SetRows(ctx, key, all, s.ttl); err != nil {
			logger.Warn("Failed to store listing session", zap.String("store", s.store.Name()), zap.Error(err))
		}
	}

	state.Companies = newRows(result.companies)
	state.Total = result.total
	state.TotalPages = result.totalPages
	return state, nil
}

func (s *Service) lookup(ctx context.Context, key string) []models.Company {
	rows, ok, err := s.store.GetRows(ctx, key)
	if err != nil {
		logger.Warn("Failed to read listing session", zap.String("store", s.store.Name()), zap.Error(err))
	}
	if err != nil || !ok {
		metrics.SessionMisses.WithLabelValues(s.store.Name()).Inc()
		return nil
	}
	metrics.SessionHits.WithLabelValues(s.store.Name()).Inc()
	if rows == nil {
		rows = []models.Company{}
	}
	return rows
}
