package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/companies"
)

type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]func(w http.ResponseWriter, r *http.Request)
	hits   map[string]int
}

func newFakeBackend(t *testing.T) (*fakeBackend, *api.Client) {
	t.Helper()
	fb := &fakeBackend{
		routes: map[string]func(w http.ResponseWriter, r *http.Request){},
		hits:   map[string]int{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.hits[r.URL.Path]++
		route, ok := fb.routes[r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Not found"}`))
			return
		}
		route(w, r)
	}))
	t.Cleanup(srv.Close)
	return fb, api.New(api.Config{BackendURL: srv.URL, Version: "v1"})
}

func (fb *fakeBackend) json(path, body string) {
	fb.status(path, http.StatusOK, body)
}

func (fb *fakeBackend) status(path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (fb *fakeBackend) hitCount(path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.hits[path]
}

func newPagesApp(client *api.Client) *fiber.App {
	app := fiber.New()
	svc := companies.NewService(client, companies.NewMemoryStore(16), 100, time.Minute)
	ch := NewCompaniesHandler(client, svc, 8, 200)
	ah := NewAnalyticsHandler(client)

	app.Get("/data/companies", ch.List)
	app.Get("/data/companies/filters", ch.FilterOptions)
	app.Get("/data/companies/:id", ch.Detail)
	app.Get("/data/search", ch.Search)
	app.Get("/data/overview", ah.Overview)
	app.Get("/data/industries", ah.Industries)
	app.Get("/data/rankings", ah.Rankings)
	return app
}

func getJSON(t *testing.T, app *fiber.App, target string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCompaniesList_ServerPagination(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/companies/", `{
		"data": [{"id": 1, "name": "Apple Inc.", "dei_status": "scaling_back", "revenue_usd": 383000000000}],
		"pagination": {"page": 1, "per_page": 12, "total_count": 1, "total_pages": 1}
	}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies?search=Apple")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	rows := body["companies"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "caution", row["dei_status_tone"])
	assert.Equal(t, "Mega Cap", row["market_cap_tier"])
}

func TestCompaniesList_FetchAllSession(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/companies/", `{"data": [
		{"id": 1, "name": "A", "industry": "Tech"},
		{"id": 2, "name": "B", "industry": "Retail"},
		{"id": 3, "name": "C", "industry": "Energy"}
	]}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies?industries=Tech,Retail")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, true, body["fetch_all"])

	status, body = getJSON(t, app, "/data/companies?industries=Retail,Tech&page=2")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["companies"])
	assert.Equal(t, 1, fb.hitCount("/v1/companies/"))
}

func TestCompaniesList_InvalidQuery(t *testing.T) {
	_, client := newFakeBackend(t)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies?sort=dei_status")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid query")
}

func TestCompaniesList_UpstreamFailureState(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.status("/v1/companies/", http.StatusUnauthorized, `{"detail":"bad key"}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized: Invalid or missing API key", body["error"])
	assert.Equal(t, float64(1), body["total_pages"])
	assert.Empty(t, body["companies"])
}

func TestCompanyDetail_ResolvesRecords(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/companies/42", `{"data": {"id": 42, "name": "Target", "risk_level": "high"}}`)
	fb.json("/v1/profiles/company/42/latest", `{
		"id": 7, "company_id": 42,
		"commitment_ids": [1, 2],
		"controversy_ids": [3],
		"data_sources": [{"id": 11}]
	}`)
	fb.json("/v1/commitments/1", `{"id": 1, "commitment_name": "Supplier diversity spend", "status": "abandoned"}`)
	fb.json("/v1/controversies/3", `{"id": 3, "title": "Boycott", "status": "ongoing"}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies/42")
	require.Equal(t, http.StatusOK, status)

	company := body["company"].(map[string]interface{})
	assert.Equal(t, "negative", company["risk_level_tone"])

	profile := body["profile"].(map[string]interface{})
	assert.Len(t, profile["commitments"], 1)
	assert.Len(t, profile["controversies"], 1)
	assert.Len(t, profile["sources"], 1)
	assert.Equal(t, map[string]interface{}{"1": "negative"}, body["commitment_tones"])
	assert.Equal(t, map[string]interface{}{"3": "negative"}, body["controversy_tones"])
}

func TestCompanyDetail_WithoutProfile(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/companies/9", `{"id": 9, "name": "Quiet Corp"}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies/9")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["profile"])
	assert.Equal(t, "Quiet Corp", body["company"].(map[string]interface{})["name"])
}

func TestCompanyDetail_NotFound(t *testing.T) {
	_, client := newFakeBackend(t)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/companies/404")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "API Error: Not Found", body["error"])
}

func TestOverview_GroupsTail(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/analytics/overview", `{
		"total_companies": 100,
		"dei_status_distribution": {"committed": 40, "scaling_back": 30, "eliminated": 20, "unknown": 10},
		"industry_distribution": {"a": 30, "b": 20, "c": 15, "d": 10, "e": 10, "f": 8, "g": 4, "h": 3}
	}`)
	fb.json("/v1/analytics/industries", `{"data": [{"industry": "a", "company_count": 30}]}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/overview")
	require.Equal(t, http.StatusOK, status)

	chartsBody := body["charts"].(map[string]interface{})
	industries := chartsBody["industries"].([]interface{})
	require.Len(t, industries, 7)
	assert.Equal(t, map[string]interface{}{"label": "Other", "value": float64(7)}, industries[6])
	assert.Len(t, chartsBody["dei_status"], 4)
	assert.Len(t, body["industries"], 1)
}

func TestOverview_FailsWhenEitherFails(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/analytics/overview", `{"total_companies": 1}`)
	fb.status("/v1/analytics/industries", http.StatusForbidden, `{}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/overview")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Forbidden: Insufficient permissions", body["error"])
}

func TestRankings(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/profiles/ranked/at-risk", `[{"profile_id": 1, "company_id": 2, "company_name": "X", "risk_level": "critical"}]`)
	fb.json("/v1/profiles/ranked/top-committed", `{"data": [{"profile_id": 3, "company_id": 4, "company_name": "Y", "dei_status": "committed"}]}`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/rankings?limit=5")
	require.Equal(t, http.StatusOK, status)

	atRisk := body["at_risk"].([]interface{})
	require.Len(t, atRisk, 1)
	assert.Equal(t, "negative", atRisk[0].(map[string]interface{})["risk_level_tone"])

	top := body["top_committed"].([]interface{})
	require.Len(t, top, 1)
	assert.Equal(t, "positive", top[0].(map[string]interface{})["dei_status_tone"])

	status, _ = getJSON(t, app, "/data/rankings?limit=0")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearch(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.json("/v1/companies/search/autocomplete", `[{"id": 5, "name": "Microsoft"}]`)
	app := newPagesApp(client)

	status, body := getJSON(t, app, "/data/search?q=Micro")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["results"], 1)

	status, body = getJSON(t, app, "/data/search?q=")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["results"])
	assert.Equal(t, 1, fb.hitCount("/v1/companies/search/autocomplete"))
}
