package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/crewsched/config"
	"github.com/gewnthar/crewsched/database"
	"github.com/gewnthar/crewsched/fetcher"
	"github.com/gewnthar/crewsched/metrics"
	"github.com/gewnthar/crewsched/models"
	"github.com/gewnthar/crewsched/services"
)

type stubFetcher struct {
	body string
	err  error
}

func (f *stubFetcher) Fetch(_ context.Context, bd models.BlockDate) (*fetcher.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fetcher.Page{BlockDate: bd, Body: f.body, Attempts: 1}, nil
}

type downDB struct{}

func (downDB) PingContext(context.Context) error { return errors.New("down") }

type testServer struct {
	srv   *httptest.Server
	fetch *stubFetcher
	doc   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	b, err := os.ReadFile("../scraper/testdata/february_2026.html")
	require.NoError(t, err)

	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := database.NewScheduleStore(db, database.DriverSQLite)
	require.NoError(t, store.EnsureSchema(context.Background()))

	now := func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	ext, err := services.NewExtractor("goquery", nil, now)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	ts := &testServer{fetch: &stubFetcher{body: string(b)}, doc: string(b)}
	svc := &services.ScheduleService{
		Extractor: ext,
		Fetcher:   ts.fetch,
		Cache:     store,
		FetchLog:  store,
		Now:       now,
		Metrics:   metrics.NewMetrics("crewsched", reg),
	}
	ts.srv = httptest.NewServer(NewRouter(RouterConfig{Service: svc, Gatherer: reg, DB: db}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, ts.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decodeError(t *testing.T, body string) string {
	t.Helper()
	var e map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &e))
	return e["error"]
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	down := httptest.NewServer(NewRouter(RouterConfig{Service: &services.ScheduleService{}, DB: downDB{}}))
	defer down.Close()
	r, err := http.Get(down.URL + "/api/health")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, r.StatusCode)
}

func TestParseEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, http.MethodPost, "/api/schedules/parse", ts.doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var s models.MonthlySchedule
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	assert.Equal(t, "February", s.Month)
	assert.Len(t, s.Items, 5)
	assert.Equal(t, models.ItemTrip, s.Items[0].Kind)

	resp, body = ts.do(t, http.MethodPost, "/api/schedules/parse", "   ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty document", decodeError(t, body))
}

func TestGetFetchesThenLists(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body)

	resp, body = ts.do(t, http.MethodGet, "/api/schedules/2026/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var c models.CachedSchedule
	require.NoError(t, json.Unmarshal([]byte(body), &c))
	assert.Equal(t, 2, c.Month)
	assert.Equal(t, "Brian Wendt", c.Schedule.CrewMemberName)

	resp, body = ts.do(t, http.MethodGet, "/api/schedules", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"month":2,"year":2026}]`, body)

	resp, body = ts.do(t, http.MethodGet, "/api/admin/schedules/2026/2/fetches", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.FetchRecord
	require.NoError(t, json.Unmarshal([]byte(body), &history))
	require.Len(t, history, 1)
	assert.Equal(t, models.FetchOK, history[0].Outcome)
}

func TestImportAndExport(t *testing.T) {
	ts := newTestServer(t)
	ts.fetch.err = &fetcher.FetchError{Attempts: 1, Err: errors.New("portal must not be called")}

	resp, _ := ts.do(t, http.MethodPut, "/api/schedules/2026/2", ts.doc)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := ts.do(t, http.MethodGet, "/api/schedules/2026/2/calendar.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "calendar-2026-02.csv")
	assert.True(t, strings.HasPrefix(body, "dow,dom,activity,layover,weekend\nSU,1,O4031,BOS,true\n"))

	resp, body = ts.do(t, http.MethodGet, "/api/schedules/2026/2/legs.csv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 11, strings.Count(body, "\n"))

	resp, _ = ts.do(t, http.MethodDelete, "/api/admin/schedules/2026/2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, http.MethodGet, "/api/schedules/2026/2", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode, body)
}

func TestRefreshErrors(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		err  error
		want int
	}{
		{&fetcher.FetchError{Attempts: 5, Err: fetcher.ErrStillBuilding}, http.StatusServiceUnavailable},
		{&fetcher.FetchError{Attempts: 1, Err: fetcher.ErrUnauthorized}, http.StatusBadGateway},
		{&fetcher.FetchError{Attempts: 1, Err: &fetcher.StatusError{StatusCode: 500}}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		ts.fetch.err = tt.err
		resp, body := ts.do(t, http.MethodPost, "/api/schedules/2026/2/refresh", "")
		assert.Equal(t, tt.want, resp.StatusCode, body)
		assert.NotEmpty(t, decodeError(t, body))
	}
}

func TestBadBlockDate(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/api/schedules/2026/13",
		"/api/schedules/abc/2",
		"/api/schedules/2026/feb/legs.csv",
		"/api/admin/schedules/2026/0/fetches",
	} {
		resp, body := ts.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
		assert.NotEmpty(t, decodeError(t, body), path)
	}

	resp, _ := ts.do(t, http.MethodGet, "/api/admin/schedules/2026/2/fetches?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/schedules/parse", ts.doc)

	resp, body := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `crewsched_documents_parsed_total{engine="goquery"} 1`)
	assert.Contains(t, body, `crewsched_items_extracted_total{kind="trip"} 3`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(services.ErrNoFetcher))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}
