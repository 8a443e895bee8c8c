package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techtrack/internal/logging"
	"techtrack/internal/scanner"
	"techtrack/internal/sector"
	"techtrack/pkg/model"
)

var defaultAsOf = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

type fakeRunner struct {
	mu    sync.Mutex
	calls []time.Time
	block chan struct{}
	// waitCtx makes Run block until its context ends
	waitCtx bool
}

func (f *fakeRunner) Run(ctx context.Context, stocks []model.Stock, asOf time.Time) *scanner.Result {
	f.mu.Lock()
	f.calls = append(f.calls, asOf)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.waitCtx {
		<-ctx.Done()
	}

	res := &scanner.Result{RunID: "run-1", AsOf: asOf, Errors: []string{}}
	for _, s := range stocks {
		if s.Ticker == "BAD" {
			res.Records = append(res.Records, model.ErrorRecord(s, "no data available"))
			res.Errors = append(res.Errors, "BAD: no data available")
			continue
		}
		res.Records = append(res.Records, model.Record{
			Ticker: s.Ticker, Sector: s.Sector, Exchange: s.Exchange, Date: asOf,
			Price:        null.FloatFrom(100),
			Rating1:      null.IntFrom(20),
			Rating1Prev1: null.IntFrom(5),
			Rating2:      null.IntFrom(3),
		})
	}
	return res
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var universe = []model.Stock{
	{Ticker: "VCB", Sector: "NH", Exchange: "HOSE"},
	{Ticker: "SSI", Sector: "CK", Exchange: "HOSE"},
	{Ticker: "BAD", Sector: "CK", Exchange: "HOSE"},
}

func newTestServer(t *testing.T, runner Runner) (*Server, *httptest.Server) {
	t.Helper()
	reg := prometheus.NewRegistry()
	scanner.NewMetrics(reg)

	s := NewServer(Options{
		Runner:   runner,
		Stocks:   universe,
		Taxonomy: sector.DefaultTaxonomy(),
		AsOf:     func() time.Time { return defaultAsOf },
		Gatherer: reg,
		Logger:   logging.Discard(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNoRunYet(t *testing.T) {
	_, ts := newTestServer(t, &fakeRunner{})

	for _, path := range []string{"/api/records", "/api/summary", "/api/errors", "/api/records/VCB"} {
		assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+path, nil), path)
	}

	var status map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/status", &status))
	assert.Equal(t, "idle", status["status"])
}

func TestRecordsAfterRefresh(t *testing.T) {
	s, ts := newTestServer(t, &fakeRunner{})
	require.NoError(t, s.Refresh(context.Background(), time.Time{}))

	var all RecordsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/records", &all))
	assert.Equal(t, "run-1", all.RunID)
	assert.Equal(t, "2024-03-15", all.AsOf)
	assert.Equal(t, 3, all.Count)
	assert.Equal(t, "VCB", all.Records[0].Ticker)

	var ck RecordsResponse
	getJSON(t, ts.URL+"/api/records?sector=CK&failed=false", &ck)
	require.Equal(t, 1, ck.Count)
	assert.Equal(t, "SSI", ck.Records[0].Ticker)

	var banks RecordsResponse
	getJSON(t, ts.URL+"/api/records?sector=Ng%C3%A2n%20h%C3%A0ng", &banks)
	assert.Equal(t, 1, banks.Count)

	var one model.Record
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/records/vcb", &one))
	assert.Equal(t, "VCB", one.Ticker)
	assert.Equal(t, int64(20), one.Rating1.Int64)

	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/records/ZZZ", nil))
}

func TestSummaryAndErrors(t *testing.T) {
	s, ts := newTestServer(t, &fakeRunner{})
	require.NoError(t, s.Refresh(context.Background(), time.Time{}))

	var summary SummaryResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/summary", &summary))
	require.Len(t, summary.Summary.Sectors, 2)
	assert.Equal(t, "Chứng khoán", summary.Summary.Sectors[0].Name)
	assert.Len(t, summary.Summary.BreakthroughUp, 2)
	assert.Equal(t, 2, summary.Totals.Count)
	assert.Equal(t, int64(40), summary.Totals.Rating1)

	var errs ErrorsResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/errors", &errs))
	assert.Equal(t, []string{"BAD: no data available"}, errs.Errors)
}

func TestRefreshEndpoint(t *testing.T) {
	runner := &fakeRunner{}
	_, ts := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/refresh?date=2024-02-01", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		var status map[string]any
		getJSON(t, ts.URL+"/api/status", &status)
		return status["status"] == "done"
	}, 2*time.Second, 10*time.Millisecond)

	runner.mu.Lock()
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), runner.calls[0])
	runner.mu.Unlock()

	assert.Equal(t, http.StatusMethodNotAllowed, getJSON(t, ts.URL+"/api/refresh", nil))

	resp, err = http.Post(ts.URL+"/api/refresh?date=yesterday", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshRejectsOverlap(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	s, ts := newTestServer(t, runner)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background(), time.Time{}) }()
	require.Eventually(t, func() bool { return runner.callCount() == 1 }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, s.Refresh(context.Background(), time.Time{}), ErrRunning)

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	close(runner.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.callCount())
}

func TestCORSAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, &fakeRunner{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/records", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "techtrack_scanner_runs_total"))
}

func TestShutdownCancelsHTTPRefresh(t *testing.T) {
	runner := &fakeRunner{waitCtx: true}
	s, ts := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Eventually(t, func() bool { return runner.callCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Shutdown(context.Background()))

	require.Eventually(t, func() bool {
		var status map[string]any
		getJSON(t, ts.URL+"/api/status", &status)
		return status["status"] == "error"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, ts.URL+"/api/records", nil))
}
