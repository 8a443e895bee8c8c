package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"techtrack/internal/ratelimit"
	"techtrack/pkg/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

var (
	vietnamTZ = time.FixedZone("ICT", 7*3600)
	newYorkTZ = loadLocation("America/New_York")
)

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// YahooProvider implements the Provider interface for Yahoo Finance (unofficial API)
type YahooProvider struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	baseURL   string
	rateLimit int
}

// NewYahooProvider creates a new Yahoo Finance provider. An empty
// baseURL uses the public chart endpoint.
func NewYahooProvider(baseURL string, rateLimit int) *YahooProvider {
	if baseURL == "" {
		baseURL = yahooBaseURL
	}
	if rateLimit <= 0 {
		rateLimit = 30 // Conservative rate limit
	}
	return &YahooProvider{
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   ratelimit.NewLimiter("yahoo", rateLimit),
		baseURL:   baseURL,
		rateLimit: rateLimit,
	}
}

// Name returns the provider name
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// IsAvailable always returns true (no API key needed)
func (p *YahooProvider) IsAvailable() bool {
	return true
}

// RateLimit returns the rate limit per minute
func (p *YahooProvider) RateLimit() int {
	return p.rateLimit
}

// yahooResponse represents the Yahoo Finance API response
type yahooResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooSymbol formats a ticker for Yahoo; Vietnamese listings carry .VN
func YahooSymbol(ticker, exchange string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	switch strings.ToUpper(exchange) {
	case "HOSE", "HNX", "UPCOM":
		return t + ".VN"
	}
	return t
}

// GetDailyBars fetches daily bars for ticker up to asOf
func (p *YahooProvider) GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error) {
	from, to := window(asOf, lookbackDays)
	symbol := YahooSymbol(ticker, exchange)
	reqURL := fmt.Sprintf("%s/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		p.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix())

	var data yahooResponse
	if err := getJSON(ctx, p.client, p.limiter, p.Name(), reqURL, &data); err != nil {
		return nil, err
	}

	if data.Chart.Error != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("%s", data.Chart.Error.Description), Retryable: false}
	}

	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Timestamp) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}

	loc := newYorkTZ
	if strings.HasSuffix(symbol, ".VN") {
		loc = vietnamTZ
	}

	result := data.Chart.Result[0]
	quotes := result.Indicators.Quote[0]
	at := func(xs []*float64, i int) (float64, bool) {
		if i >= len(xs) || xs[i] == nil {
			return 0, false
		}
		return *xs[i], true
	}

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Skip bars with any missing price
		o, ok1 := at(quotes.Open, i)
		h, ok2 := at(quotes.High, i)
		l, ok3 := at(quotes.Low, i)
		c, ok4 := at(quotes.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		v, _ := at(quotes.Volume, i)

		bars = append(bars, model.Bar{
			Date:   calendarDay(time.Unix(ts, 0), loc),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	bars = dedupeDays(finalize(bars, asOf))
	if len(bars) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}
	return bars, nil
}

// dedupeDays keeps the last bar of each calendar day. Yahoo can emit
// the live session twice around the close.
func dedupeDays(bars []model.Bar) []model.Bar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
