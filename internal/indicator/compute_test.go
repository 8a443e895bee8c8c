package indicator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techtrack/pkg/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func barsFromCloses(closes []float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func linear(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func constant(n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestComputeEmpty(t *testing.T) {
	_, err := Compute(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySeries))
}

func TestComputeValidationAggregatesErrors(t *testing.T) {
	bars := barsFromCloses(linear(5))
	bars[1].Close = -1
	bars[3].Volume = -5
	bars[4].Date = bars[2].Date

	_, err := Compute(bars)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "close must be a positive number")
	assert.Contains(t, msg, "volume must be non-negative")
	assert.Contains(t, msg, "duplicate date")
}

func TestComputeSortsInput(t *testing.T) {
	bars := barsFromCloses(linear(30))
	reversed := make([]model.Bar, len(bars))
	for i := range bars {
		reversed[len(bars)-1-i] = bars[i]
	}

	f, err := Compute(reversed)
	require.NoError(t, err)
	got := f.Bars()
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Date.After(got[i-1].Date))
	}
	// input slice untouched
	assert.Equal(t, bars[len(bars)-1].Date, reversed[0].Date)
}

func TestInsufficientHistoryIsUndefined(t *testing.T) {
	f, err := Compute(barsFromCloses(linear(10)))
	require.NoError(t, err)

	last := f.Len() - 1
	assert.True(t, f.Value(SMA10, last).Valid)
	assert.False(t, f.Value(SMA10, last-1).Valid)
	assert.False(t, f.Value(SMA20, last).Valid)
	assert.False(t, f.Value(SMA200, last).Valid)
	assert.False(t, f.Value(RSI14, last).Valid)
	assert.False(t, f.Value(MACD, last).Valid)
	assert.False(t, f.Value(Momentum10, last).Valid)
}

func TestSingleBar(t *testing.T) {
	f, err := Compute(barsFromCloses([]float64{50}))
	require.NoError(t, err)

	snap := f.SnapshotAtIndex(0)
	assert.Equal(t, 50.0, snap.Price.Float64)
	assert.False(t, snap.SMA5.Valid)
	assert.False(t, snap.HullMA9.Valid)
	assert.False(t, snap.UO.Valid)
	assert.False(t, snap.RSIPrev.Valid)
	assert.False(t, snap.MA50AboveMA200)
}

func TestMovingAveragesOnLinearSeries(t *testing.T) {
	f, err := Compute(barsFromCloses(linear(60)))
	require.NoError(t, err)

	assert.InDelta(t, 102.0, f.Value(SMA5, 4).Float64, 1e-9)
	assert.InDelta(t, 159.0-4.5, f.Value(SMA10, 59).Float64, 1e-9)
	assert.False(t, f.Value(EMA10, 8).Valid)
	assert.True(t, f.Value(EMA10, 9).Valid)
	// EMA lags a rising series
	assert.Less(t, f.Value(EMA10, 59).Float64, 159.0)
	assert.InDelta(t, 10.0, f.Value(Momentum10, 10).Float64, 1e-9)
	assert.False(t, f.Value(Momentum10, 9).Valid)
}

func TestOscillatorsOnLinearSeries(t *testing.T) {
	f, err := Compute(barsFromCloses(linear(60)))
	require.NoError(t, err)

	assert.False(t, f.Value(RSI14, 12).Valid)
	assert.InDelta(t, 100.0, f.Value(RSI14, 13).Float64, 1e-9)

	// close sits 14 above the 14-bar low, range is 15
	assert.InDelta(t, 100*14.0/15.0, f.Value(StochK, 20).Float64, 1e-9)
	assert.InDelta(t, -100*1.0/15.0, f.Value(WilliamsR, 20).Float64, 1e-9)

	assert.False(t, f.Value(UO, 27).Valid)
	assert.InDelta(t, 50.0, f.Value(UO, 28).Float64, 1e-9)

	assert.False(t, f.Value(MACD, 24).Valid)
	assert.True(t, f.Value(MACD, 25).Valid)
	assert.False(t, f.Value(MACDSignal, 32).Valid)
	assert.True(t, f.Value(MACDSignal, 33).Valid)
	assert.Greater(t, f.Value(MACD, 59).Float64, 0.0)

	assert.False(t, f.Value(DMIPlus, 13).Valid)
	assert.True(t, f.Value(DMIPlus, 14).Valid)
	assert.Greater(t, f.Value(DMIPlus, 40).Float64, f.Value(DMIMinus, 40).Float64)
	assert.False(t, f.Value(ADX14, 26).Valid)
	assert.True(t, f.Value(ADX14, 27).Valid)

	assert.True(t, f.Value(AO, 33).Valid)
	assert.False(t, f.Value(AO, 32).Valid)
}

func TestHullMAConvergesOnConstantSeries(t *testing.T) {
	const p = 42.5
	f, err := Compute(barsFromCloses(constant(30, p)))
	require.NoError(t, err)

	assert.False(t, f.Value(HullMA9, 9).Valid)
	for i := 10; i < f.Len(); i++ {
		assert.InDelta(t, p, f.Value(HullMA9, i).Float64, 1e-9, "row %d", i)
	}
}

func TestConstantSeriesDegenerateRanges(t *testing.T) {
	f, err := Compute(barsFromCloses(constant(40, 10)))
	require.NoError(t, err)

	last := f.Len() - 1
	assert.InDelta(t, 100.0, f.Value(RSI14, last).Float64, 1e-9)
	// StochRSI has a zero range once RSI is flat
	assert.False(t, f.Value(StochRSIK, last).Valid)
	assert.InDelta(t, 0.0, f.Value(CloseVsMA20, last).Float64, 1e-9)
	assert.InDelta(t, 0.0, f.Value(Momentum10, last).Float64, 1e-9)
}

func TestLaggedColumns(t *testing.T) {
	f, err := Compute(barsFromCloses(linear(80)))
	require.NoError(t, err)

	for _, tc := range []struct {
		lag, src Column
	}{
		{RSIPrev, RSI14},
		{CCIPrev, CCI20},
		{ADXPrev, ADX14},
		{MomentumPrev, Momentum10},
		{WilliamsRPrev, WilliamsR},
		{BullPowerPrev, BullPower},
		{BearPowerPrev, BearPower},
		{EMA13Prev, EMA13},
		{AOPrev, AO},
	} {
		t.Run(tc.lag.String(), func(t *testing.T) {
			assert.Equal(t, f.Value(tc.src, 78), f.Value(tc.lag, 79))
			assert.False(t, f.Value(tc.lag, 0).Valid)
		})
	}
}

func TestStrengthAndTrendFlag(t *testing.T) {
	f, err := Compute(barsFromCloses(linear(220)))
	require.NoError(t, err)

	snap := f.SnapshotAtIndex(f.Len() - 1)
	require.True(t, snap.StrengthLT.Valid)
	want := (snap.CloseVsMA5.Float64 + snap.CloseVsMA10.Float64 + snap.CloseVsMA20.Float64) / 3
	assert.InDelta(t, want, snap.StrengthST.Float64, 1e-9)
	assert.True(t, snap.MA50AboveMA200)
	assert.InDelta(t, (snap.High.Float64-snap.EMA13.Float64)*1000, snap.BullPower.Float64, 1e-6)
}

func TestSnapshotAt(t *testing.T) {
	bars := barsFromCloses(linear(5))
	// drop 2024-01-03 to leave a gap
	bars = append(bars[:2], bars[3:]...)
	f, err := Compute(bars)
	require.NoError(t, err)

	tests := []struct {
		name    string
		asOf    time.Time
		wantIdx int
		wantOK  bool
	}{
		{"before first bar", day0.AddDate(0, 0, -1), -1, false},
		{"exact first bar", day0, 0, true},
		{"gap resolves to earlier bar", day0.AddDate(0, 0, 2), 1, true},
		{"same day later hour", day0.AddDate(0, 0, 3).Add(15 * time.Hour), 2, true},
		{"after last bar", day0.AddDate(0, 1, 0), 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, idx, ok := f.SnapshotAt(tt.asOf)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIdx, idx)
			if ok {
				assert.Equal(t, f.Bars()[idx].Date, snap.Date)
			}
		})
	}
}

func TestColumnNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Columns() {
		name := c.String()
		assert.NotEmpty(t, name)
		assert.False(t, seen[name], "duplicate column name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "unknown", Column(-1).String())
}
