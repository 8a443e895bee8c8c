package provider

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"techtrack/pkg/model"
)

// ErrNoData means the source answered but has no bars for the request
var ErrNoData = errors.New("no data available")

// Provider defines the interface for daily price data sources
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetDailyBars returns daily bars for ticker covering lookbackDays
	// calendar days up to and including asOf, ascending by date.
	// Returns ErrNoData (possibly wrapped) when nothing is available.
	GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error)

	// IsAvailable checks if the provider can be used
	IsAvailable() bool

	// RateLimit returns the rate limit per minute
	RateLimit() int
}

// ExchangeFilter is implemented by providers that only cover some
// tickers or exchanges.
type ExchangeFilter interface {
	Supports(ticker, exchange string) bool
}

// ProviderError represents a provider-specific error
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a provider error marked retryable
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// FallbackProvider tries multiple providers in order
type FallbackProvider struct {
	providers []Provider
}

// NewFallbackProvider creates a new fallback provider
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	// Filter to only available providers
	available := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.IsAvailable() {
			available = append(available, p)
		}
	}
	return &FallbackProvider{providers: available}
}

// Name returns the combined provider name
func (f *FallbackProvider) Name() string {
	return "fallback"
}

// GetDailyBars tries each provider that covers the ticker, in order,
// until one returns bars.
func (f *FallbackProvider) GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error) {
	lastErr := ErrNoData
	for _, p := range f.providers {
		if flt, ok := p.(ExchangeFilter); ok && !flt.Supports(ticker, exchange) {
			continue
		}
		bars, err := p.GetDailyBars(ctx, ticker, exchange, asOf, lookbackDays)
		if err == nil && len(bars) > 0 {
			return bars, nil
		}
		if err != nil {
			lastErr = err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// IsAvailable returns true if any provider is available
func (f *FallbackProvider) IsAvailable() bool {
	return len(f.providers) > 0
}

// RateLimit returns the highest rate limit among providers
func (f *FallbackProvider) RateLimit() int {
	maxRate := 0
	for _, p := range f.providers {
		if p.RateLimit() > maxRate {
			maxRate = p.RateLimit()
		}
	}
	return maxRate
}

// Providers returns the list of underlying providers
func (f *FallbackProvider) Providers() []Provider {
	return f.providers
}

// IsVietnamese reports whether the ticker trades on a Vietnamese venue
func IsVietnamese(ticker, exchange string) bool {
	switch strings.ToUpper(exchange) {
	case "HOSE", "HNX", "UPCOM":
		return true
	}
	switch strings.ToUpper(ticker) {
	case "VNINDEX", "VNMID", "VNMIDCAP":
		return true
	}
	return false
}

// window returns the [from, to] range covering lookbackDays before asOf,
// with to at the end of the asOf day.
func window(asOf time.Time, lookbackDays int) (time.Time, time.Time) {
	y, m, d := asOf.Date()
	end := time.Date(y, m, d, 23, 59, 59, 0, asOf.Location())
	return end.AddDate(0, 0, -lookbackDays), end
}

// finalize sorts bars ascending and drops anything after asOf's
// calendar day.
func finalize(bars []model.Bar, asOf time.Time) []model.Bar {
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Date.Before(bars[j].Date)
	})
	y, m, d := asOf.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	out := bars[:0]
	for _, b := range bars {
		by, bm, bd := b.Date.Date()
		if time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC).Before(cutoff) {
			out = append(out, b)
		}
	}
	return out
}
