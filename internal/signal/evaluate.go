package signal

import (
	"github.com/guregu/null/v6"

	"techtrack/pkg/model"
)

// Evaluate applies every rule to one snapshot. A rule with any
// undefined input is Neutral; all comparisons are strict.
func Evaluate(s model.Snapshot) Set {
	var set Set

	set[MA10] = versus(s.Price, s.SMA10)
	set[MA20] = versus(s.Price, s.SMA20)
	set[MA30] = versus(s.Price, s.SMA30)
	set[MA50] = versus(s.Price, s.SMA50)
	set[MA100] = versus(s.Price, s.SMA100)
	set[MA200] = versus(s.Price, s.SMA200)
	set[EMA10] = versus(s.Price, s.EMA10)
	set[EMA20] = versus(s.Price, s.EMA20)
	set[EMA30] = versus(s.Price, s.EMA30)
	set[EMA50] = versus(s.Price, s.EMA50)
	set[EMA100] = versus(s.Price, s.EMA100)
	set[EMA200] = versus(s.Price, s.EMA200)
	set[VWMA] = versus(s.Price, s.VWMA20)
	set[HullMA] = versus(s.Price, s.HullMA9)
	set[Ichimoku] = ichimoku(s)

	set[RSI] = bounded(s.RSI14, s.RSIPrev, 30, 70)
	set[Stochastic] = crossing(s.StochK, s.StochD)
	set[CCI] = bounded(s.CCI20, s.CCIPrev, -100, 100)
	set[ADX] = adx(s)
	set[AO] = zeroLine(s.AO, s.AOPrev)
	set[Momentum] = trend(s.Momentum10, s.MomentumPrev)
	set[MACD] = versus(s.MACD, s.MACDSignal)
	set[StochRSI] = crossing(s.StochRSIK, s.StochRSID)
	set[WilliamsR] = williams(s.WilliamsR, s.WilliamsRPrev)
	set[BBP] = bullBear(s)
	set[UO] = ultimate(s.UO)

	return set
}

func defined(vals ...null.Float) bool {
	for _, v := range vals {
		if !v.Valid {
			return false
		}
	}
	return true
}

// versus is Buy when a is above b and Sell when below
func versus(a, b null.Float) model.Verdict {
	if !defined(a, b) {
		return model.Neutral
	}
	switch {
	case a.Float64 > b.Float64:
		return model.Buy
	case a.Float64 < b.Float64:
		return model.Sell
	}
	return model.Neutral
}

func trend(cur, prev null.Float) model.Verdict {
	return versus(cur, prev)
}

// bounded is Buy below lo while rising and Sell above hi while falling
func bounded(cur, prev null.Float, lo, hi float64) model.Verdict {
	if !defined(cur, prev) {
		return model.Neutral
	}
	v, p := cur.Float64, prev.Float64
	switch {
	case v < lo && v > p:
		return model.Buy
	case v > hi && v < p:
		return model.Sell
	}
	return model.Neutral
}

// zeroLine is Buy above zero while rising and Sell below zero while falling
func zeroLine(cur, prev null.Float) model.Verdict {
	if !defined(cur, prev) {
		return model.Neutral
	}
	v, p := cur.Float64, prev.Float64
	switch {
	case v > 0 && v > p:
		return model.Buy
	case v < 0 && v < p:
		return model.Sell
	}
	return model.Neutral
}

// crossing is the %K/%D rule shared by Stochastic and Stochastic RSI
func crossing(k, d null.Float) model.Verdict {
	if !defined(k, d) {
		return model.Neutral
	}
	kv, dv := k.Float64, d.Float64
	switch {
	case kv < 20 && dv < 20 && kv > dv:
		return model.Buy
	case kv > 80 && dv > 80 && kv < dv:
		return model.Sell
	}
	return model.Neutral
}

func williams(cur, prev null.Float) model.Verdict {
	if !defined(cur, prev) {
		return model.Neutral
	}
	v, p := cur.Float64, prev.Float64
	switch {
	case v < -80 && v > p:
		return model.Buy
	case v > -20 && v < p:
		return model.Sell
	}
	return model.Neutral
}

func ichimoku(s model.Snapshot) model.Verdict {
	if !defined(s.Price, s.IchimokuSpanA, s.IchimokuSpanB, s.IchimokuBase, s.IchimokuConversion) {
		return model.Neutral
	}
	price, a, b := s.Price.Float64, s.IchimokuSpanA.Float64, s.IchimokuSpanB.Float64
	base, conv := s.IchimokuBase.Float64, s.IchimokuConversion.Float64
	switch {
	case a > b && base > a && conv > base && price > conv:
		return model.Buy
	case a < b && base < a && conv < base && price < conv:
		return model.Sell
	}
	return model.Neutral
}

// adx needs a strengthening trend (ADX above 20 and rising) in either
// direction; the DI lines pick the side.
func adx(s model.Snapshot) model.Verdict {
	if !defined(s.DMIPlus, s.DMIMinus, s.ADX14, s.ADXPrev) {
		return model.Neutral
	}
	plus, minus := s.DMIPlus.Float64, s.DMIMinus.Float64
	strengthening := s.ADX14.Float64 > 20 && s.ADX14.Float64 > s.ADXPrev.Float64
	switch {
	case plus > minus && strengthening:
		return model.Buy
	case plus < minus && strengthening:
		return model.Sell
	}
	return model.Neutral
}

func bullBear(s model.Snapshot) model.Verdict {
	if !defined(s.EMA13, s.EMA13Prev, s.BullPower, s.BullPowerPrev, s.BearPower, s.BearPowerPrev) {
		return model.Neutral
	}
	ema, emaPrev := s.EMA13.Float64, s.EMA13Prev.Float64
	switch {
	case ema > emaPrev && s.BearPower.Float64 < 0 && s.BearPower.Float64 > s.BearPowerPrev.Float64:
		return model.Buy
	case ema < emaPrev && s.BullPower.Float64 > 0 && s.BullPower.Float64 < s.BullPowerPrev.Float64:
		return model.Sell
	}
	return model.Neutral
}

// ultimate is a pure threshold rule, with no direction check
func ultimate(uo null.Float) model.Verdict {
	if !uo.Valid {
		return model.Neutral
	}
	switch {
	case uo.Float64 > 70:
		return model.Buy
	case uo.Float64 < 30:
		return model.Sell
	}
	return model.Neutral
}
