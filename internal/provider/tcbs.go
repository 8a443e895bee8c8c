package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"techtrack/internal/ratelimit"
	"techtrack/pkg/model"
)

const tcbsBaseURL = "https://apipubaws.tcbs.com.vn/stock-insight/v1/stock/bars-long-term"

// TCBSProvider serves Vietnamese stocks and VNINDEX from the TCBS
// public bars API.
type TCBSProvider struct {
	client     *http.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	rateLimit  int
	attempts   int
	retryDelay time.Duration
}

// NewTCBSProvider creates a TCBS provider. An empty baseURL uses the
// public endpoint.
func NewTCBSProvider(baseURL string, rateLimit int) *TCBSProvider {
	if baseURL == "" {
		baseURL = tcbsBaseURL
	}
	if rateLimit <= 0 {
		rateLimit = 120
	}
	return &TCBSProvider{
		client:     &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.NewLimiter("tcbs", rateLimit),
		baseURL:    baseURL,
		rateLimit:  rateLimit,
		attempts:   2,
		retryDelay: time.Second,
	}
}

// SetRetry overrides the attempt count and the pause between attempts
func (p *TCBSProvider) SetRetry(attempts int, delay time.Duration) {
	p.attempts = attempts
	p.retryDelay = delay
}

// Name returns the provider name
func (p *TCBSProvider) Name() string {
	return "tcbs"
}

// IsAvailable always returns true (no API key needed)
func (p *TCBSProvider) IsAvailable() bool {
	return true
}

// RateLimit returns the rate limit per minute
func (p *TCBSProvider) RateLimit() int {
	return p.rateLimit
}

// Supports limits TCBS to Vietnamese exchanges and indices
func (p *TCBSProvider) Supports(ticker, exchange string) bool {
	return IsVietnamese(ticker, exchange)
}

type tcbsBar struct {
	TradingDate string  `json:"tradingDate"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}

type tcbsResponse struct {
	Ticker string    `json:"ticker"`
	Data   []tcbsBar `json:"data"`
}

// tcbsTicker maps display tickers to the symbols TCBS expects
func tcbsTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "VNMID" {
		return "VNMIDCAP"
	}
	return t
}

// GetDailyBars fetches daily bars for ticker up to asOf
func (p *TCBSProvider) GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error) {
	from, to := window(asOf, lookbackDays)
	q := url.Values{}
	q.Set("ticker", tcbsTicker(ticker))
	q.Set("type", "stock")
	q.Set("resolution", "D")
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))
	reqURL := p.baseURL + "?" + q.Encode()

	var data tcbsResponse
	err := withRetry(ctx, p.attempts, p.retryDelay, p.limiter, func() error {
		data = tcbsResponse{}
		return getJSON(ctx, p.client, p.limiter, p.Name(), reqURL, &data)
	})
	if err != nil {
		return nil, err
	}
	if len(data.Data) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}

	bars := make([]model.Bar, 0, len(data.Data))
	for _, b := range data.Data {
		t, err := time.Parse(time.RFC3339, b.TradingDate)
		if err != nil {
			return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("parsing trading date %q: %w", b.TradingDate, err), Retryable: false}
		}
		bars = append(bars, model.Bar{
			Date:   calendarDay(t, time.UTC),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	bars = finalize(bars, asOf)
	if len(bars) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: ErrNoData, Retryable: false}
	}
	return bars, nil
}
