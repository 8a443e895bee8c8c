package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/phuslu/log"

	"techtrack/internal/analyzer"
	"techtrack/internal/cache"
	"techtrack/internal/config"
	"techtrack/internal/logging"
	"techtrack/internal/provider"
	"techtrack/internal/symbols"
	"techtrack/pkg/model"
)

// setup loads and validates the config and builds the logger
func setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, os.Stderr)
	return cfg, logger, nil
}

// buildProvider chains the enabled sources (TCBS first, Yahoo as
// fallback) behind the configured bar cache. The returned func releases
// cache connections.
func buildProvider(ctx context.Context, cfg *config.Config, logger *log.Logger) (provider.Provider, func(), error) {
	var providers []provider.Provider
	if cfg.Providers.TCBS.Enabled {
		providers = append(providers, provider.NewTCBSProvider(cfg.Providers.TCBS.BaseURL, cfg.Providers.TCBS.RateLimit))
	}
	if cfg.Providers.Yahoo.Enabled {
		providers = append(providers, provider.NewYahooProvider(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Yahoo.RateLimit))
	}

	fallback := provider.NewFallbackProvider(providers...)
	if !fallback.IsAvailable() {
		return nil, nil, fmt.Errorf("no available data providers")
	}

	names := make([]string, 0, len(fallback.Providers()))
	for _, p := range fallback.Providers() {
		names = append(names, p.Name())
	}
	logger.Debug().Str("providers", strings.Join(names, ",")).Str("cache", cfg.Cache.Backend).Msg("data sources ready")

	var store cache.Store
	closer := func() {}
	switch cfg.Cache.Backend {
	case "memory":
		store = cache.NewMemoryStore()
	case "redis":
		client, err := cache.DialRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			return nil, nil, err
		}
		store = cache.NewRedisStore(client, cfg.Cache.Prefix)
		closer = func() { client.Close() }
	default:
		return fallback, closer, nil
	}

	return provider.NewCachingProvider(fallback, store, cfg.Cache.TTL, logger), closer, nil
}

func buildAnalyzer(p provider.Provider, cfg *config.Config, logger *log.Logger) *analyzer.Analyzer {
	return analyzer.New(p, cfg.Scanner.LookbackDays, logger)
}

// resolveUniverse picks the tickers to analyse: --symbols, then a
// predefined universe name, then a CSV path.
func resolveUniverse(cfg *config.Config) ([]model.Stock, error) {
	var stocks []model.Stock
	switch {
	case symbolList != "":
		stocks = symbols.FromList(strings.Split(symbolList, ","), "HOSE")
	case symbols.GetUniverse(symbols.Universe(strings.ToLower(universeName))) != nil:
		stocks = symbols.GetUniverse(symbols.Universe(strings.ToLower(universeName)))
	default:
		path := cfg.Universe.Path
		if universeName != "" {
			path = universeName
		}
		var err error
		stocks, err = symbols.LoadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("loading universe: %w", err)
		}
	}
	return symbols.BySector(stocks, sectorFilter), nil
}
