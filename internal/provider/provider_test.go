package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techtrack/internal/cache"
	"techtrack/pkg/model"
)

var asOf = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func TestTCBSGetDailyBars(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ticker":"VCB","data":[
			{"open":90,"high":92,"low":89,"close":91,"volume":1000,"tradingDate":"2024-03-15T00:00:00.000Z"},
			{"open":88,"high":90,"low":87,"close":89,"volume":1200,"tradingDate":"2024-03-14T00:00:00.000Z"},
			{"open":92,"high":93,"low":91,"close":92,"volume":900,"tradingDate":"2024-03-18T00:00:00.000Z"}
		]}`)
	}))
	defer srv.Close()

	p := NewTCBSProvider(srv.URL, 600)
	bars, err := p.GetDailyBars(context.Background(), "vcb", "HOSE", asOf, 365)
	require.NoError(t, err)

	require.Len(t, bars, 2, "bars after asOf are dropped")
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 91.0, bars[1].Close)
	assert.Equal(t, 1000.0, bars[1].Volume)

	assert.Contains(t, gotQuery, "ticker=VCB")
	assert.Contains(t, gotQuery, "resolution=D")
	assert.Contains(t, gotQuery, "type=stock")
}

func TestTCBSMapsVNMID(t *testing.T) {
	var ticker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker = r.URL.Query().Get("ticker")
		fmt.Fprint(w, `{"data":[{"open":1,"high":1,"low":1,"close":1,"volume":0,"tradingDate":"2024-03-15T00:00:00.000Z"}]}`)
	}))
	defer srv.Close()

	_, err := NewTCBSProvider(srv.URL, 600).GetDailyBars(context.Background(), "VNMID", "INDEX", asOf, 30)
	require.NoError(t, err)
	assert.Equal(t, "VNMIDCAP", ticker)
}

func TestTCBSRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data":[{"open":1,"high":1,"low":1,"close":1,"volume":0,"tradingDate":"2024-03-15T00:00:00.000Z"}]}`)
	}))
	defer srv.Close()

	p := NewTCBSProvider(srv.URL, 600)
	p.SetRetry(2, time.Millisecond)
	bars, err := p.GetDailyBars(context.Background(), "FPT", "HOSE", asOf, 30)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTCBSNoData(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty data", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"data":[]}`) }},
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"only future bars", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[{"open":1,"high":1,"low":1,"close":1,"volume":0,"tradingDate":"2024-04-01T00:00:00.000Z"}]}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewTCBSProvider(srv.URL, 600).GetDailyBars(context.Background(), "AAA", "HOSE", asOf, 30)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoData))
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestTCBSSupports(t *testing.T) {
	p := NewTCBSProvider("", 0)
	assert.True(t, p.Supports("VCB", "HOSE"))
	assert.True(t, p.Supports("SHS", "hnx"))
	assert.True(t, p.Supports("VNINDEX", ""))
	assert.False(t, p.Supports("AAPL", "NASDAQ"))
}

func TestYahooGetDailyBars(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		// 09:00 ICT on Mar 13, 14, 15; the middle session has a null close
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"VCB.VN"},
			"timestamp":[1710295200,1710381600,1710468000],
			"indicators":{"quote":[{
				"open":[10,11,12],"high":[11,12,13],"low":[9,10,11],
				"close":[10.5,null,12.5],"volume":[100,200,null]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, 600)
	bars, err := p.GetDailyBars(context.Background(), "VCB", "HOSE", asOf, 30)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "/VCB.VN"))
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 12.5, bars[1].Close)
	assert.Equal(t, 0.0, bars[1].Volume)
}

func TestYahooChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	_, err := NewYahooProvider(srv.URL, 600).GetDailyBars(context.Background(), "ZZZ", "", asOf, 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestYahooRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, 600)
	_, err := p.GetDailyBars(context.Background(), "AAPL", "", asOf, 30)
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 1, p.limiter.Throttled())
}

func TestYahooSymbol(t *testing.T) {
	assert.Equal(t, "VCB.VN", YahooSymbol("vcb", "HOSE"))
	assert.Equal(t, "SHS.VN", YahooSymbol("SHS", "HNX"))
	assert.Equal(t, "^GSPC", YahooSymbol("^GSPC", "INDEX"))
}

type fakeProvider struct {
	name     string
	supports func(ticker, exchange string) bool
	bars     []model.Bar
	err      error
	calls    int32
}

func (f *fakeProvider) Name() string      { return f.name }
func (f *fakeProvider) IsAvailable() bool { return true }
func (f *fakeProvider) RateLimit() int    { return 60 }

func (f *fakeProvider) GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.bars, f.err
}

type filteredFake struct{ *fakeProvider }

func (f filteredFake) Supports(ticker, exchange string) bool { return f.supports(ticker, exchange) }

func TestFallbackProvider(t *testing.T) {
	vn := &fakeProvider{name: "vn", err: &ProviderError{Provider: "vn", Err: errors.New("boom"), Retryable: true},
		supports: func(_, ex string) bool { return ex == "HOSE" }}
	global := &fakeProvider{name: "global", bars: []model.Bar{{Close: 1}}}

	f := NewFallbackProvider(filteredFake{vn}, global)

	bars, err := f.GetDailyBars(context.Background(), "AAPL", "NASDAQ", asOf, 30)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, int32(0), vn.calls, "unsupported exchange is skipped")

	_, err = f.GetDailyBars(context.Background(), "VCB", "HOSE", asOf, 30)
	require.NoError(t, err)
	assert.Equal(t, int32(1), vn.calls)
	assert.Equal(t, int32(2), global.calls)
}

func TestFallbackProviderAllFail(t *testing.T) {
	a := &fakeProvider{name: "a", err: &ProviderError{Provider: "a", Err: ErrNoData}}
	f := NewFallbackProvider(a)

	_, err := f.GetDailyBars(context.Background(), "X", "", asOf, 30)
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = NewFallbackProvider().GetDailyBars(context.Background(), "X", "", asOf, 30)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestCachingProvider(t *testing.T) {
	inner := &fakeProvider{name: "inner", bars: []model.Bar{{Close: 5}}}
	p := NewCachingProvider(inner, cache.NewMemoryStore(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		bars, err := p.GetDailyBars(ctx, "VCB", "HOSE", asOf, 365)
		require.NoError(t, err)
		assert.Equal(t, 5.0, bars[0].Close)
	}
	assert.Equal(t, int32(1), inner.calls)

	_, err := p.GetDailyBars(ctx, "VCB", "HOSE", asOf.AddDate(0, 0, -1), 365)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls, "different as-of day is a different key")
}

func TestCachingProviderDoesNotCacheErrors(t *testing.T) {
	inner := &fakeProvider{name: "inner", err: ErrNoData}
	p := NewCachingProvider(inner, cache.NewMemoryStore(), time.Minute, nil)

	for i := 0; i < 2; i++ {
		_, err := p.GetDailyBars(context.Background(), "X", "", asOf, 30)
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls)
}
