// Command quotetest probes each configured market data source for one
// ticker and prints what the analysis pipeline makes of it.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"techtrack/internal/analyzer"
	"techtrack/internal/config"
	"techtrack/internal/logging"
	"techtrack/internal/provider"
	"techtrack/internal/schedule"
	"techtrack/pkg/model"
)

var (
	cfgFile  string
	exchange string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quotetest [TICKER]",
		Short: "Probe TCBS and Yahoo for one ticker",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	rootCmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.Flags().StringVar(&exchange, "exchange", "HOSE", "exchange of the ticker")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}, os.Stderr)

	ticker := "VCB"
	if len(args) == 1 {
		ticker = args[0]
	}
	stock := model.Stock{Ticker: strings.ToUpper(ticker), Exchange: strings.ToUpper(exchange)}
	asOf := schedule.LastTradingDate(time.Now())
	ctx := context.Background()

	sources := []provider.Provider{
		provider.NewTCBSProvider(cfg.Providers.TCBS.BaseURL, cfg.Providers.TCBS.RateLimit),
		provider.NewYahooProvider(cfg.Providers.Yahoo.BaseURL, cfg.Providers.Yahoo.RateLimit),
	}

	fmt.Printf("=== Data source probe: %s (%s) as of %s ===\n", stock.Ticker, stock.Exchange, asOf.Format("2006-01-02"))

	for i, p := range sources {
		fmt.Printf("\n[%d] %s\n", i+1, p.Name())
		if flt, ok := p.(provider.ExchangeFilter); ok && !flt.Supports(stock.Ticker, stock.Exchange) {
			fmt.Println("    skipped: ticker not covered")
			continue
		}

		start := time.Now()
		bars, err := p.GetDailyBars(ctx, stock.Ticker, stock.Exchange, asOf, analyzer.DefaultLookbackDays)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("    ERROR: %v\n", err)
			continue
		}
		fmt.Printf("    OK: %d bars in %s\n", len(bars), elapsed.Round(time.Millisecond))
		if len(bars) > 0 {
			last := bars[len(bars)-1]
			fmt.Printf("    Last: %s O=%.0f H=%.0f L=%.0f C=%.0f V=%.0f\n",
				last.Date.Format("2006-01-02"), last.Open, last.High, last.Low, last.Close, last.Volume)
		}
	}

	fmt.Println("\n[3] Analysis through the fallback chain")
	a := analyzer.New(provider.NewFallbackProvider(sources...), analyzer.DefaultLookbackDays, logger)
	rec := a.Analyze(ctx, stock, asOf)
	if rec.Failed() {
		return fmt.Errorf("analysis failed: %s", rec.Error)
	}
	fmt.Printf("    Price: %.0f (%+.2f%%)\n", rec.Price.Float64, rec.Change.Float64)
	fmt.Printf("    Osc buy/sell: %d/%d  MA buy/sell: %d/%d\n",
		rec.Counts.OscBuy, rec.Counts.OscSell, rec.Counts.MABuy, rec.Counts.MASell)
	fmt.Printf("    Rating1: %v (prev %v, %v)  Rating2: %v (prev %v, %v)\n",
		rec.Rating1.Int64, rec.Rating1Prev1.Int64, rec.Rating1Prev2.Int64,
		rec.Rating2.Int64, rec.Rating2Prev1.Int64, rec.Rating2Prev2.Int64)
	return nil
}
