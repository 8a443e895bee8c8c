// Package schedule runs periodic batch refreshes on a cron spec, in
// Vietnam market time.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// RefreshFunc runs one batch as of the given date
type RefreshFunc func(ctx context.Context, asOf time.Time) error

// Refresher fires a RefreshFunc on a standard 5-field cron spec. A tick
// that arrives while the previous refresh is still running is skipped.
type Refresher struct {
	cron   *cron.Cron
	fn     RefreshFunc
	logger *log.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec and prepares a refresher; call Start to begin
func New(spec string, fn RefreshFunc, logger *log.Logger) (*Refresher, error) {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	cl := cronLogger{logger}
	r := &Refresher{
		cron: cron.New(
			cron.WithLocation(Location()),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		fn:     fn,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(spec, r.RunNow); err != nil {
		return nil, fmt.Errorf("register refresh %q: %w", spec, err)
	}
	return r, nil
}

// Start starts the scheduler. Running refreshes see ctx.
func (r *Refresher) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.cron.Start()
	r.logger.Info().Time("next", r.Next()).Msg("refresh scheduler started")
}

// Stop cancels any running refresh and waits for it to return
func (r *Refresher) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.cron.Stop().Done()
	r.logger.Info().Msg("refresh scheduler stopped")
}

// Next returns the next scheduled run, zero if not started
func (r *Refresher) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow performs one refresh as of the last trading date
func (r *Refresher) RunNow() {
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	asOf := LastTradingDate(time.Now())
	start := time.Now()
	if err := r.fn(ctx, asOf); err != nil {
		r.logger.Error().Err(err).Str("as_of", asOf.Format("2006-01-02")).Msg("scheduled refresh failed")
		return
	}
	r.logger.Info().Str("as_of", asOf.Format("2006-01-02")).Dur("elapsed", time.Since(start)).Msg("scheduled refresh done")
}

// cronLogger routes cron's own messages to phuslu/log
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().KeysAndValues(keysAndValues...).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).KeysAndValues(keysAndValues...).Msg("cron: " + msg)
}
