package provider

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"techtrack/internal/cache"
	"techtrack/pkg/model"
)

// CachingProvider wraps a Provider with a cache.Store for GetDailyBars.
// Entries are keyed by ticker, exchange, as-of day and lookback.
type CachingProvider struct {
	inner  Provider
	store  cache.Store
	ttl    time.Duration
	logger *log.Logger
}

// NewCachingProvider creates a caching wrapper. A non-positive ttl uses
// cache.DefaultTTL.
func NewCachingProvider(inner Provider, store cache.Store, ttl time.Duration, logger *log.Logger) *CachingProvider {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &CachingProvider{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }
func (p *CachingProvider) RateLimit() int    { return p.inner.RateLimit() }

// GetDailyBars serves from the cache when possible. Cache failures are
// logged and fall through to the wrapped provider; errors are not cached.
func (p *CachingProvider) GetDailyBars(ctx context.Context, ticker, exchange string, asOf time.Time, lookbackDays int) ([]model.Bar, error) {
	key := cache.Key(ticker, exchange, asOf, lookbackDays)

	bars, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		return bars, nil
	}

	bars, err = p.inner.GetDailyBars(ctx, ticker, exchange, asOf, lookbackDays)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, key, bars, p.ttl); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return bars, nil
}
