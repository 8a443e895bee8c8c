// Package analyzer turns one ticker's price history into a rated record.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"

	"techtrack/internal/indicator"
	"techtrack/internal/provider"
	"techtrack/internal/signal"
	"techtrack/pkg/model"
)

// DefaultLookbackDays covers SMA200 with room for holidays
const DefaultLookbackDays = 365

// MsgNoData is the record error for tickers without usable bars
const MsgNoData = "no data available"

// Analyzer fetches, computes and rates a single ticker
type Analyzer struct {
	provider     provider.Provider
	lookbackDays int
	logger       *log.Logger
}

// New creates an analyzer. A non-positive lookback uses
// DefaultLookbackDays; a nil logger uses the package default.
func New(p provider.Provider, lookbackDays int, logger *log.Logger) *Analyzer {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Analyzer{
		provider:     p,
		lookbackDays: lookbackDays,
		logger:       logger,
	}
}

// Analyze builds the record for stock as of asOf. It never panics and
// never returns an error: failures come back as a record with null
// metrics and Error set.
func (a *Analyzer) Analyze(ctx context.Context, stock model.Stock, asOf time.Time) (rec model.Record) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Str("ticker", stock.Ticker).Msgf("analysis panicked: %v", r)
			rec = model.ErrorRecord(stock, fmt.Sprintf("analysis panicked: %v", r))
		}
	}()

	bars, err := a.provider.GetDailyBars(ctx, stock.Ticker, stock.Exchange, asOf, a.lookbackDays)
	if err != nil {
		if errors.Is(err, provider.ErrNoData) {
			a.logger.Debug().Str("ticker", stock.Ticker).Msg(MsgNoData)
			return model.ErrorRecord(stock, MsgNoData)
		}
		a.logger.Warn().Str("ticker", stock.Ticker).Err(err).Msg("fetch failed")
		return model.ErrorRecord(stock, fmt.Sprintf("fetching bars: %v", err))
	}
	if len(bars) == 0 {
		return model.ErrorRecord(stock, MsgNoData)
	}

	frame, err := indicator.Compute(bars)
	if err != nil {
		a.logger.Warn().Str("ticker", stock.Ticker).Err(err).Msg("indicator computation failed")
		return model.ErrorRecord(stock, err.Error())
	}

	return Build(stock, frame, asOf)
}

// Build rates the frame row at asOf and the two rows before it.
func Build(stock model.Stock, frame *indicator.Frame, asOf time.Time) model.Record {
	snap, idx, ok := frame.SnapshotAt(asOf)
	if !ok {
		return model.ErrorRecord(stock, MsgNoData)
	}

	set, counts, rating := signal.Rate(snap)

	rec := model.Record{
		Sector:         stock.Sector,
		Ticker:         stock.Ticker,
		Exchange:       stock.Exchange,
		Date:           snap.Date,
		Price:          snap.Price,
		Change:         null.FloatFrom(change(frame.Bars(), idx)),
		Counts:         counts,
		Snapshot:       snap,
		Signals:        set.Verdicts(),
		Rating1:        null.IntFrom(int64(rating.Rating1)),
		Rating2:        null.IntFrom(int64(rating.Rating2)),
		MA50AboveMA200: snap.MA50AboveMA200,
	}

	if idx >= 1 {
		_, _, r := signal.Rate(frame.SnapshotAtIndex(idx - 1))
		rec.Rating1Prev1 = null.IntFrom(int64(r.Rating1))
		rec.Rating2Prev1 = null.IntFrom(int64(r.Rating2))
	}
	if idx >= 2 {
		_, _, r := signal.Rate(frame.SnapshotAtIndex(idx - 2))
		rec.Rating1Prev2 = null.IntFrom(int64(r.Rating1))
		rec.Rating2Prev2 = null.IntFrom(int64(r.Rating2))
	}
	return rec
}

// change is the percent move from the previous bar's close, 0 when
// there is no previous bar or its close is 0.
func change(bars []model.Bar, idx int) float64 {
	if idx < 1 || idx >= len(bars) {
		return 0
	}
	prev := bars[idx-1].Close
	if prev == 0 {
		return 0
	}
	return (bars[idx].Close - prev) / prev * 100
}
