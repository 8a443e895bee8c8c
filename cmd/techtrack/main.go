package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"techtrack/internal/render"
	"techtrack/internal/scanner"
	"techtrack/internal/schedule"
	"techtrack/internal/sector"
	"techtrack/pkg/model"
)

var (
	cfgFile      string
	dateStr      string
	universeName string
	symbolList   string
	sectorFilter string
	workers      int
	format       string
	outputPath   string
	verbose      bool
	port         int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "techtrack",
		Short: "Technical-analysis ratings for Vietnamese equities",
		Long: `Techtrack computes ~40 technical indicators, 26 buy/sell signals and two
ratings per ticker, then ranks tickers within sectors.

Examples:
  techtrack analyze --universe vn30
  techtrack analyze --symbols VCB,SSI,HPG --date 2024-03-15 --format json
  techtrack analyze --universe TA_Tracking_List.csv --format csv --output ta.csv
  techtrack serve --port 8080`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one batch and print the report",
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVar(&dateStr, "date", "", "as-of date YYYY-MM-DD (default: last trading day)")
	analyzeCmd.Flags().StringVar(&universeName, "universe", "", "vn30, indices, test, or a CSV path (default: config universe.path)")
	analyzeCmd.Flags().StringVar(&symbolList, "symbols", "", "comma-separated tickers, optionally TICKER:EXCHANGE")
	analyzeCmd.Flags().StringVar(&sectorFilter, "sector", "", "only analyse this sector code")
	analyzeCmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (default: config)")
	analyzeCmd.Flags().StringVar(&format, "format", "table", "output format: table, json, csv")
	analyzeCmd.Flags().StringVar(&outputPath, "output", "", "write json/csv output to this file instead of stdout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the latest batch over HTTP and refresh it on a schedule",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (default: config server.port)")
	serveCmd.Flags().StringVar(&universeName, "universe", "", "vn30, indices, test, or a CSV path (default: config universe.path)")

	sectorsCmd := &cobra.Command{
		Use:   "sectors",
		Short: "Print the sector taxonomy",
		RunE:  runSectors,
	}

	rootCmd.AddCommand(analyzeCmd, serveCmd, sectorsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// report is the JSON document written by analyze --format json
type report struct {
	RunID    string         `json:"run_id"`
	AsOf     string         `json:"as_of"`
	Duration string         `json:"duration"`
	Records  []model.Record `json:"records"`
	Summary  sector.Summary `json:"summary"`
	Errors   []string       `json:"errors"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	switch format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", format)
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if workers > 0 {
		cfg.Scanner.Workers = workers
	}

	asOf := schedule.LastTradingDate(time.Now())
	if dateStr != "" {
		asOf, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", dateStr)
		}
	}

	stocks, err := resolveUniverse(cfg)
	if err != nil {
		return err
	}
	if len(stocks) == 0 {
		return fmt.Errorf("no stocks to analyse")
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted. Stopping analysis...")
		cancel()
	}()

	p, closeProvider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	s := scanner.NewScanner(buildAnalyzer(p, cfg, logger), cfg.Scanner.Workers, cfg.Scanner.Timeout, logger)

	fmt.Fprintf(os.Stderr, "Analysing %d tickers as of %s...\n\n", len(stocks), asOf.Format("2006-01-02"))

	bar := progressbar.NewOptions(len(stocks),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]█[reset]",
			SaucerHead:    "[green]█[reset]",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	s.SetProgressCallback(func(completed, total int, ticker string) {
		bar.Set(completed)
	})

	result := s.Run(ctx, stocks, asOf)
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	summary := sector.Summarize(result.Records, cfg.Sectors)

	switch format {
	case "json":
		return writeOutput(func(w io.Writer) error {
			return render.JSON(w, report{
				RunID:    result.RunID,
				AsOf:     result.AsOf.Format("2006-01-02"),
				Duration: result.Duration.Round(time.Millisecond).String(),
				Records:  result.Records,
				Summary:  summary,
				Errors:   result.Errors,
			})
		})
	case "csv":
		return writeOutput(func(w io.Writer) error {
			return render.CSV(w, result.Records)
		})
	}

	if err := render.SectorTable(os.Stdout, summary); err != nil {
		return fmt.Errorf("rendering sectors: %w", err)
	}
	fmt.Println()
	if err := render.RecordTable(os.Stdout, result.Records); err != nil {
		return fmt.Errorf("rendering records: %w", err)
	}
	render.Errors(os.Stdout, result.Errors)

	fmt.Printf("\nAnalysed %d tickers (%d failed) in %s\n",
		len(result.Records), result.Failed(), result.Duration.Round(time.Second))
	return nil
}

// writeOutput writes to --output when set, else stdout
func writeOutput(fn func(io.Writer) error) error {
	if outputPath == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Results saved to %s\n", outputPath)
	return nil
}

func runSectors(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Sector", "Codes", "Top", "Bottom"}),
	)
	for _, g := range cfg.Sectors.Groups {
		codes := cfg.Sectors.Codes(g.Name)
		sort.Strings(codes)
		table.Append([]string{g.Name, strings.Join(codes, ", "), fmt.Sprint(g.Top), fmt.Sprint(g.Bottom)})
	}
	return table.Render()
}
