package model

import (
	"fmt"
	"time"

	"github.com/guregu/null/v6"
)

// Bar represents a single daily OHLCV bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Stock is one row of the ticker universe
type Stock struct {
	Ticker   string `json:"ticker"`
	Sector   string `json:"sector"`
	Exchange string `json:"exchange"` // HOSE, HNX, UPCOM, INDEX, ...
}

// Verdict is a categorical signal outcome. The zero value is Neutral.
type Verdict int8

const (
	Neutral Verdict = iota
	Buy
	Sell
)

func (v Verdict) String() string {
	switch v {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return "Neutral"
	}
}

// MarshalText encodes the verdict as its display name
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes Buy, Sell or Neutral
func (v *Verdict) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Buy":
		*v = Buy
	case "Sell":
		*v = Sell
	case "Neutral", "":
		*v = Neutral
	default:
		return fmt.Errorf("unknown verdict %q", string(b))
	}
	return nil
}

// Snapshot holds indicator values as of one bar. Invalid fields are
// undefined (not enough history, or a degenerate division).
type Snapshot struct {
	Date   time.Time  `json:"date"`
	Price  null.Float `json:"price"`
	Open   null.Float `json:"open"`
	High   null.Float `json:"high"`
	Low    null.Float `json:"low"`
	Volume null.Float `json:"volume"`

	SMA5   null.Float `json:"sma_5"`
	SMA10  null.Float `json:"sma_10"`
	SMA20  null.Float `json:"sma_20"`
	SMA30  null.Float `json:"sma_30"`
	SMA50  null.Float `json:"sma_50"`
	SMA100 null.Float `json:"sma_100"`
	SMA200 null.Float `json:"sma_200"`

	EMA10  null.Float `json:"ema_10"`
	EMA13  null.Float `json:"ema_13"`
	EMA20  null.Float `json:"ema_20"`
	EMA30  null.Float `json:"ema_30"`
	EMA50  null.Float `json:"ema_50"`
	EMA100 null.Float `json:"ema_100"`
	EMA200 null.Float `json:"ema_200"`

	VWMA20  null.Float `json:"vwma_20"`
	HullMA9 null.Float `json:"hull_ma_9"`

	IchimokuConversion null.Float `json:"ichimoku_conversion"`
	IchimokuBase       null.Float `json:"ichimoku_base"`
	IchimokuSpanA      null.Float `json:"ichimoku_a"`
	IchimokuSpanB      null.Float `json:"ichimoku_b"`

	RSI14      null.Float `json:"rsi_14"`
	StochK     null.Float `json:"stoch_k"`
	StochD     null.Float `json:"stoch_d"`
	CCI20      null.Float `json:"cci_20"`
	ADX14      null.Float `json:"adx_14"`
	DMIPlus    null.Float `json:"dmi_positive"`
	DMIMinus   null.Float `json:"dmi_negative"`
	AO         null.Float `json:"ao"`
	Momentum10 null.Float `json:"momentum_10"`
	MACD       null.Float `json:"macd"`
	MACDSignal null.Float `json:"macd_signal"`
	StochRSIK  null.Float `json:"stochrsi_k"`
	StochRSID  null.Float `json:"stochrsi_d"`
	WilliamsR  null.Float `json:"williams_r"`
	UO         null.Float `json:"uo"`
	BullPower  null.Float `json:"bull_power"`
	BearPower  null.Float `json:"bear_power"`

	CloseVsMA5   null.Float `json:"close_vs_ma5"`
	CloseVsMA10  null.Float `json:"close_vs_ma10"`
	CloseVsMA20  null.Float `json:"close_vs_ma20"`
	CloseVsMA50  null.Float `json:"close_vs_ma50"`
	CloseVsMA200 null.Float `json:"close_vs_ma200"`
	StrengthST   null.Float `json:"strength_st"`
	StrengthLT   null.Float `json:"strength_lt"`

	MA50AboveMA200 bool `json:"ma50_gt_ma200"`

	// Values from the preceding bar of the series
	RSIPrev       null.Float `json:"rsi_prev"`
	CCIPrev       null.Float `json:"cci_prev"`
	ADXPrev       null.Float `json:"adx_prev"`
	MomentumPrev  null.Float `json:"momentum_prev"`
	WilliamsRPrev null.Float `json:"williams_r_prev"`
	BullPowerPrev null.Float `json:"bull_power_prev"`
	BearPowerPrev null.Float `json:"bear_power_prev"`
	EMA13Prev     null.Float `json:"ema_13_prev"`
	AOPrev        null.Float `json:"ao_prev"`
}

// SignalVerdict is one evaluated signal as carried on a record
type SignalVerdict struct {
	Name    string  `json:"name"`
	Family  string  `json:"family"`
	Verdict Verdict `json:"verdict"`
}

// Counts holds buy/sell tallies per signal family
type Counts struct {
	OscBuy  int `json:"osc_buy"`
	OscSell int `json:"osc_sell"`
	MABuy   int `json:"ma_buy"`
	MASell  int `json:"ma_sell"`
}

// Record is the analysis result for one ticker in one run
type Record struct {
	Sector   string     `json:"sector"`
	Ticker   string     `json:"ticker"`
	Exchange string     `json:"exchange"`
	Date     time.Time  `json:"date,omitempty"`
	Price    null.Float `json:"price"`
	Change   null.Float `json:"change_pct"`

	Counts   Counts          `json:"counts"`
	Snapshot Snapshot        `json:"indicators"`
	Signals  []SignalVerdict `json:"signals,omitempty"`

	Rating1      null.Int `json:"rating1"`
	Rating2      null.Int `json:"rating2"`
	Rating1Prev1 null.Int `json:"rating1_prev1"`
	Rating2Prev1 null.Int `json:"rating2_prev1"`
	Rating1Prev2 null.Int `json:"rating1_prev2"`
	Rating2Prev2 null.Int `json:"rating2_prev2"`

	MA50AboveMA200 bool   `json:"ma50_gt_ma200"`
	Error          string `json:"error,omitempty"`
}

// Failed reports whether the record carries an error instead of metrics
func (r *Record) Failed() bool {
	return r.Error != ""
}

// ErrorRecord builds the null-metric record used when analysis fails
func ErrorRecord(s Stock, msg string) Record {
	return Record{
		Sector:   s.Sector,
		Ticker:   s.Ticker,
		Exchange: s.Exchange,
		Error:    msg,
	}
}
