package handlers

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dei-tracker/web/internal/api"
	"github.com/dei-tracker/web/internal/models"
)

type fakeConn struct {
	in chan []byte

	mu  sync.Mutex
	out []map[string]interface{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16)}
}

func (f *fakeConn) ReadJSON(v interface{}) error {
	data, ok := <-f.in
	if !ok {
		return io.EOF
	}
	return json.Unmarshal(data, v)
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.mu.Lock()
	f.out = append(f.out, m)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) messages(kind string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []map[string]interface{}
	for _, m := range f.out {
		if m["type"] == kind {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) send(msg string) {
	f.in <- []byte(msg)
}

type recordingFetcher struct {
	mu    sync.Mutex
	calls []api.CompanyListParams
}

func (r *recordingFetcher) ListCompanies(_ context.Context, params api.CompanyListParams) (*models.Page[models.Company], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, params)
	return &models.Page[models.Company]{
		Data:       []models.Company{{ID: "1", Name: "Apple Inc."}},
		Total:      30,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: 3,
	}, nil
}

func (r *recordingFetcher) snapshot() []api.CompanyListParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.CompanyListParams(nil), r.calls...)
}

type fakePalette struct {
	mu      sync.Mutex
	queries []string
}

func (p *fakePalette) Autocomplete(_ context.Context, query string, limit int) ([]models.CompanySuggestion, error) {
	p.mu.Lock()
	p.queries = append(p.queries, query)
	p.mu.Unlock()
	return []models.CompanySuggestion{{ID: "5", Name: "Microsoft"}}, nil
}

func (p *fakePalette) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

func startSession(t *testing.T) (*fakeConn, *recordingFetcher, *fakePalette, func()) {
	t.Helper()
	fetcher := &recordingFetcher{}
	palette := &fakePalette{}
	h := NewWebSocketHandler(fetcher, palette, WebSocketConfig{
		FetchAllPageSize: 100,
		SearchDebounce:   30 * time.Millisecond,
		PaletteDebounce:  20 * time.Millisecond,
	})

	conn := newFakeConn()
	done := make(chan struct{})
	go func() {
		h.serve(conn)
		close(done)
	}()

	stop := func() {
		close(conn.in)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("session did not shut down")
		}
	}
	return conn, fetcher, palette, stop
}

func TestWebSocket_InitialStateAndDebouncedSearch(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn, fetcher, _, stop := startSession(t)
	defer stop()

	require.Eventually(t, func() bool { return len(fetcher.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		states := conn.messages("state")
		if len(states) < 2 {
			return false
		}
		last := states[len(states)-1]["state"].(map[string]interface{})
		return last["loading"] == false
	}, time.Second, 5*time.Millisecond)

	conn.send(`{"type":"search","search":"A"}`)
	conn.send(`{"type":"search","search":"Ap"}`)
	conn.send(`{"type":"search","search":"App"}`)

	require.Eventually(t, func() bool { return len(fetcher.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	calls := fetcher.snapshot()
	require.Len(t, calls, 2)
	assert.Equal(t, "App", calls[1].Search)
	assert.Equal(t, 1, calls[1].Page)
}

func TestWebSocket_PageAndFilters(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn, fetcher, _, stop := startSession(t)
	defer stop()

	require.Eventually(t, func() bool { return len(fetcher.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	conn.send(`{"type":"page","page":2}`)
	require.Eventually(t, func() bool { return len(fetcher.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, fetcher.snapshot()[1].Page)

	conn.send(`{"type":"filters","query":{"industries":["Technology","Retail"],"view":"table","page":5}}`)
	require.Eventually(t, func() bool { return len(fetcher.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	call := fetcher.snapshot()[2]
	assert.Equal(t, 1, call.Page)
	assert.Equal(t, 100, call.PerPage)

	conn.send(`{"type":"page","page":2}`)
	require.Eventually(t, func() bool {
		states := conn.messages("state")
		last := states[len(states)-1]["state"].(map[string]interface{})
		return last["fetch_all"] == true && last["page"] == float64(2) && last["loading_more"] == false
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, fetcher.snapshot(), 3)
}

func TestWebSocket_Palette(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn, _, palette, stop := startSession(t)
	defer stop()

	conn.send(`{"type":"palette","search":"Mi"}`)
	conn.send(`{"type":"palette","search":"Micro"}`)

	require.Eventually(t, func() bool { return len(conn.messages("palette_results")) == 1 }, time.Second, 5*time.Millisecond)
	result := conn.messages("palette_results")[0]
	assert.Equal(t, "Micro", result["query"])
	assert.Len(t, result["results"], 1)
	assert.Equal(t, 1, palette.count())
}

func TestWebSocket_BadMessages(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	conn, _, _, stop := startSession(t)
	defer stop()

	conn.send(`not json`)
	conn.send(`{"type":"teleport"}`)
	conn.send(`{"type":"filters","query":{"sort":"dei_status"}}`)

	require.Eventually(t, func() bool { return len(conn.messages("error")) == 3 }, time.Second, 5*time.Millisecond)
	errs := conn.messages("error")
	assert.Equal(t, "Invalid message", errs[0]["error"])
	assert.Equal(t, "Unknown message type", errs[1]["error"])
	assert.Contains(t, errs[2]["error"], "invalid query")
}
