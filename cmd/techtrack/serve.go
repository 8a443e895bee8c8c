package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"techtrack/internal/scanner"
	"techtrack/internal/schedule"
	"techtrack/internal/web"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	stocks, err := resolveUniverse(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, closeProvider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	s := scanner.NewScanner(buildAnalyzer(p, cfg, logger), cfg.Scanner.Workers, cfg.Scanner.Timeout, logger)
	s.SetMetrics(scanner.NewMetrics(prometheus.DefaultRegisterer))

	srv := web.NewServer(web.Options{
		Runner:   s,
		Stocks:   stocks,
		Taxonomy: cfg.Sectors,
		AsOf:     func() time.Time { return schedule.LastTradingDate(time.Now()) },
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})

	// First batch in the background so the API comes up immediately
	go func() {
		if err := srv.Refresh(ctx, time.Time{}); err != nil && !errors.Is(err, web.ErrRunning) {
			logger.Error().Err(err).Msg("initial refresh failed")
		}
	}()

	if cfg.Server.Refresh != "" {
		refresher, err := schedule.New(cfg.Server.Refresh, func(ctx context.Context, asOf time.Time) error {
			err := srv.Refresh(ctx, asOf)
			if errors.Is(err, web.ErrRunning) {
				logger.Warn().Msg("scheduled refresh skipped, previous batch still running")
				return nil
			}
			return err
		}, logger)
		if err != nil {
			return err
		}
		refresher.Start(ctx)
		defer refresher.Stop()
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		fmt.Fprintln(os.Stderr, "\nShutting down...")
	case err := <-errChan:
		return fmt.Errorf("server: %w", err)
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
