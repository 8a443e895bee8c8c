package indicator

import (
	"math"
	"time"

	"github.com/guregu/null/v6"

	"techtrack/pkg/model"
)

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.bars)
}

// Bars returns the sorted bars backing the frame
func (f *Frame) Bars() []model.Bar {
	return f.bars
}

// Column returns the raw values of one column. NaN means undefined.
// Callers must not modify the returned slice.
func (f *Frame) Column(c Column) []float64 {
	return f.cols[c]
}

// Value returns one cell, invalid when undefined or out of range
func (f *Frame) Value(c Column, i int) null.Float {
	if c < 0 || c >= numColumns || i < 0 || i >= len(f.bars) {
		return null.Float{}
	}
	return nf(f.cols[c][i])
}

// IndexAt returns the row of the latest bar dated on or before asOf,
// compared by calendar day, or -1 when every bar is later.
func (f *Frame) IndexAt(asOf time.Time) int {
	target := civil(asOf)
	idx := -1
	for i, b := range f.bars {
		if civil(b.Date) > target {
			break
		}
		idx = i
	}
	return idx
}

// SnapshotAt returns the snapshot for the latest bar dated on or before
// asOf together with its row index.
func (f *Frame) SnapshotAt(asOf time.Time) (model.Snapshot, int, bool) {
	idx := f.IndexAt(asOf)
	if idx < 0 {
		return model.Snapshot{}, -1, false
	}
	return f.SnapshotAtIndex(idx), idx, true
}

// SnapshotAtIndex builds the snapshot for row i
func (f *Frame) SnapshotAtIndex(i int) model.Snapshot {
	if i < 0 || i >= len(f.bars) {
		return model.Snapshot{}
	}
	b := f.bars[i]
	v := func(c Column) null.Float { return nf(f.cols[c][i]) }

	return model.Snapshot{
		Date:   b.Date,
		Price:  null.FloatFrom(b.Close),
		Open:   null.FloatFrom(b.Open),
		High:   null.FloatFrom(b.High),
		Low:    null.FloatFrom(b.Low),
		Volume: null.FloatFrom(b.Volume),

		SMA5:   v(SMA5),
		SMA10:  v(SMA10),
		SMA20:  v(SMA20),
		SMA30:  v(SMA30),
		SMA50:  v(SMA50),
		SMA100: v(SMA100),
		SMA200: v(SMA200),

		EMA10:  v(EMA10),
		EMA13:  v(EMA13),
		EMA20:  v(EMA20),
		EMA30:  v(EMA30),
		EMA50:  v(EMA50),
		EMA100: v(EMA100),
		EMA200: v(EMA200),

		VWMA20:  v(VWMA20),
		HullMA9: v(HullMA9),

		IchimokuConversion: v(IchimokuConversion),
		IchimokuBase:       v(IchimokuBase),
		IchimokuSpanA:      v(IchimokuSpanA),
		IchimokuSpanB:      v(IchimokuSpanB),

		RSI14:      v(RSI14),
		StochK:     v(StochK),
		StochD:     v(StochD),
		CCI20:      v(CCI20),
		ADX14:      v(ADX14),
		DMIPlus:    v(DMIPlus),
		DMIMinus:   v(DMIMinus),
		AO:         v(AO),
		Momentum10: v(Momentum10),
		MACD:       v(MACD),
		MACDSignal: v(MACDSignal),
		StochRSIK:  v(StochRSIK),
		StochRSID:  v(StochRSID),
		WilliamsR:  v(WilliamsR),
		UO:         v(UO),
		BullPower:  v(BullPower),
		BearPower:  v(BearPower),

		CloseVsMA5:   v(CloseVsMA5),
		CloseVsMA10:  v(CloseVsMA10),
		CloseVsMA20:  v(CloseVsMA20),
		CloseVsMA50:  v(CloseVsMA50),
		CloseVsMA200: v(CloseVsMA200),
		StrengthST:   v(StrengthST),
		StrengthLT:   v(StrengthLT),

		MA50AboveMA200: f.ma50AboveMA200[i],

		RSIPrev:       v(RSIPrev),
		CCIPrev:       v(CCIPrev),
		ADXPrev:       v(ADXPrev),
		MomentumPrev:  v(MomentumPrev),
		WilliamsRPrev: v(WilliamsRPrev),
		BullPowerPrev: v(BullPowerPrev),
		BearPowerPrev: v(BearPowerPrev),
		EMA13Prev:     v(EMA13Prev),
		AOPrev:        v(AOPrev),
	}
}

func nf(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// civil reduces a timestamp to its calendar day as yyyymmdd
func civil(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
