package scanner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"techtrack/internal/analyzer"
	"techtrack/pkg/model"
)

// DefaultWorkers is the pool size when none is configured. Work is
// network bound, so it exceeds the usual core count.
const DefaultWorkers = 15

// MsgCancelled is the record error for tickers never started
const MsgCancelled = "cancelled"

// ProgressCallback is called after each ticker completes
type ProgressCallback func(completed, total int, ticker string)

// Analyzer produces the record for one ticker
type Analyzer interface {
	Analyze(ctx context.Context, stock model.Stock, asOf time.Time) model.Record
}

// Result is the outcome of one batch run
type Result struct {
	RunID    string         `json:"run_id"`
	AsOf     time.Time      `json:"as_of"`
	Records  []model.Record `json:"records"`
	Errors   []string       `json:"errors"`
	Duration time.Duration  `json:"duration"`
}

// Failed returns the number of records carrying an error
func (r *Result) Failed() int {
	n := 0
	for i := range r.Records {
		if r.Records[i].Failed() {
			n++
		}
	}
	return n
}

// Scanner performs parallel analysis of a ticker list
type Scanner struct {
	analyzer     Analyzer
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
	metrics      *Metrics
	logger       *log.Logger
}

// NewScanner creates a new scanner. A non-positive worker count uses
// DefaultWorkers; a non-positive timeout means no run deadline.
func NewScanner(a Analyzer, workers int, timeout time.Duration, logger *log.Logger) *Scanner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Scanner{
		analyzer: a,
		workers:  workers,
		timeout:  timeout,
		logger:   logger,
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// SetMetrics enables Prometheus instrumentation
func (s *Scanner) SetMetrics(m *Metrics) {
	s.metrics = m
}

type job struct {
	idx   int
	stock model.Stock
}

// Run analyses every stock as of asOf. Records come back in input
// order, one per stock. A failing ticker never affects its siblings;
// tickers not started before ctx ends get a "cancelled" record.
func (s *Scanner) Run(ctx context.Context, stocks []model.Stock, asOf time.Time) *Result {
	startTime := time.Now()
	runID := uuid.NewString()

	result := &Result{
		RunID:   runID,
		AsOf:    asOf,
		Records: make([]model.Record, len(stocks)),
		Errors:  []string{},
	}
	if len(stocks) == 0 {
		result.Duration = time.Since(startTime)
		return result
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info().Str("run_id", runID).Int("tickers", len(stocks)).
		Int("workers", s.workers).Str("as_of", asOf.Format("2006-01-02")).Msg("scan started")
	if s.metrics != nil {
		s.metrics.runs.Inc()
	}

	jobChan := make(chan job, len(stocks))
	for i, stock := range stocks {
		jobChan <- job{idx: i, stock: stock}
	}
	close(jobChan)

	workers := s.workers
	if workers > len(stocks) {
		workers = len(stocks)
	}

	var completed int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobChan {
				var rec model.Record
				if ctx.Err() != nil {
					rec = model.ErrorRecord(j.stock, MsgCancelled)
				} else {
					rec = s.analyze(ctx, j.stock, asOf)
				}
				// Each slot has exactly one writer
				result.Records[j.idx] = rec
				s.observe(rec)

				count := atomic.AddInt64(&completed, 1)
				if s.progressFunc != nil {
					s.progressFunc(int(count), len(stocks), j.stock.Ticker)
				}
			}
		}()
	}
	wg.Wait()

	for _, rec := range result.Records {
		if rec.Failed() {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", rec.Ticker, rec.Error))
		}
	}
	result.Duration = time.Since(startTime)

	if s.metrics != nil {
		s.metrics.lastDuration.Set(result.Duration.Seconds())
		s.metrics.lastRun.SetToCurrentTime()
	}
	s.logger.Info().Str("run_id", runID).Int("tickers", len(stocks)).
		Int("failed", len(result.Errors)).Dur("duration", result.Duration).Msg("scan finished")

	return result
}

// analyze calls the analyzer, turning a panic into an error record
func (s *Scanner) analyze(ctx context.Context, stock model.Stock, asOf time.Time) (rec model.Record) {
	began := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("ticker", stock.Ticker).Msgf("worker panic: %v", r)
			rec = model.ErrorRecord(stock, fmt.Sprintf("worker panic: %v", r))
		}
		if s.metrics != nil {
			s.metrics.tickerTime.Observe(time.Since(began).Seconds())
		}
	}()
	return s.analyzer.Analyze(ctx, stock, asOf)
}

func (s *Scanner) observe(rec model.Record) {
	if s.metrics == nil {
		return
	}
	outcome := OutcomeOK
	switch rec.Error {
	case "":
	case analyzer.MsgNoData:
		outcome = OutcomeNoData
	case MsgCancelled:
		outcome = OutcomeCancelled
	default:
		outcome = OutcomeError
	}
	s.metrics.tickers.WithLabelValues(outcome).Inc()
}
