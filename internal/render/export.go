package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/guregu/null/v6"

	"techtrack/internal/signal"
	"techtrack/pkg/model"
)

// JSON writes v as indented JSON
func JSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

type indicatorColumn struct {
	name string
	get  func(*model.Snapshot) null.Float
}

var indicatorColumns = []indicatorColumn{
	{"High", func(s *model.Snapshot) null.Float { return s.High }},
	{"Low", func(s *model.Snapshot) null.Float { return s.Low }},
	{"Volume", func(s *model.Snapshot) null.Float { return s.Volume }},
	{"Ichimoku_Base", func(s *model.Snapshot) null.Float { return s.IchimokuBase }},
	{"Ichimoku_Conversion", func(s *model.Snapshot) null.Float { return s.IchimokuConversion }},
	{"Ichimoku_A", func(s *model.Snapshot) null.Float { return s.IchimokuSpanA }},
	{"Ichimoku_B", func(s *model.Snapshot) null.Float { return s.IchimokuSpanB }},
	{"SMA_5", func(s *model.Snapshot) null.Float { return s.SMA5 }},
	{"SMA_10", func(s *model.Snapshot) null.Float { return s.SMA10 }},
	{"SMA_20", func(s *model.Snapshot) null.Float { return s.SMA20 }},
	{"SMA_30", func(s *model.Snapshot) null.Float { return s.SMA30 }},
	{"SMA_50", func(s *model.Snapshot) null.Float { return s.SMA50 }},
	{"SMA_100", func(s *model.Snapshot) null.Float { return s.SMA100 }},
	{"SMA_200", func(s *model.Snapshot) null.Float { return s.SMA200 }},
	{"EMA_10", func(s *model.Snapshot) null.Float { return s.EMA10 }},
	{"EMA_13", func(s *model.Snapshot) null.Float { return s.EMA13 }},
	{"EMA_20", func(s *model.Snapshot) null.Float { return s.EMA20 }},
	{"EMA_30", func(s *model.Snapshot) null.Float { return s.EMA30 }},
	{"EMA_50", func(s *model.Snapshot) null.Float { return s.EMA50 }},
	{"EMA_100", func(s *model.Snapshot) null.Float { return s.EMA100 }},
	{"EMA_200", func(s *model.Snapshot) null.Float { return s.EMA200 }},
	{"VWMA_20", func(s *model.Snapshot) null.Float { return s.VWMA20 }},
	{"Hull_MA_9", func(s *model.Snapshot) null.Float { return s.HullMA9 }},
	{"RSI_14", func(s *model.Snapshot) null.Float { return s.RSI14 }},
	{"Stoch_K", func(s *model.Snapshot) null.Float { return s.StochK }},
	{"Stoch_D", func(s *model.Snapshot) null.Float { return s.StochD }},
	{"CCI_20", func(s *model.Snapshot) null.Float { return s.CCI20 }},
	{"ADX_14", func(s *model.Snapshot) null.Float { return s.ADX14 }},
	{"DMI_Positive", func(s *model.Snapshot) null.Float { return s.DMIPlus }},
	{"DMI_Negative", func(s *model.Snapshot) null.Float { return s.DMIMinus }},
	{"AO", func(s *model.Snapshot) null.Float { return s.AO }},
	{"Momentum_10", func(s *model.Snapshot) null.Float { return s.Momentum10 }},
	{"MACD", func(s *model.Snapshot) null.Float { return s.MACD }},
	{"MACD_Signal_Value", func(s *model.Snapshot) null.Float { return s.MACDSignal }},
	{"StochRSI_K", func(s *model.Snapshot) null.Float { return s.StochRSIK }},
	{"StochRSI_D", func(s *model.Snapshot) null.Float { return s.StochRSID }},
	{"Williams_R", func(s *model.Snapshot) null.Float { return s.WilliamsR }},
	{"UO", func(s *model.Snapshot) null.Float { return s.UO }},
	{"Bull_Power", func(s *model.Snapshot) null.Float { return s.BullPower }},
	{"Bear_Power", func(s *model.Snapshot) null.Float { return s.BearPower }},
	{"Close_vs_MA5", func(s *model.Snapshot) null.Float { return s.CloseVsMA5 }},
	{"Close_vs_MA10", func(s *model.Snapshot) null.Float { return s.CloseVsMA10 }},
	{"Close_vs_MA20", func(s *model.Snapshot) null.Float { return s.CloseVsMA20 }},
	{"Close_vs_MA50", func(s *model.Snapshot) null.Float { return s.CloseVsMA50 }},
	{"Close_vs_MA200", func(s *model.Snapshot) null.Float { return s.CloseVsMA200 }},
	{"STRENGTH_ST", func(s *model.Snapshot) null.Float { return s.StrengthST }},
	{"STRENGTH_LT", func(s *model.Snapshot) null.Float { return s.StrengthLT }},
	{"RSI_Prev", func(s *model.Snapshot) null.Float { return s.RSIPrev }},
	{"CCI_Prev", func(s *model.Snapshot) null.Float { return s.CCIPrev }},
	{"ADX_Prev", func(s *model.Snapshot) null.Float { return s.ADXPrev }},
	{"Momentum_Prev", func(s *model.Snapshot) null.Float { return s.MomentumPrev }},
	{"Williams_R_Prev", func(s *model.Snapshot) null.Float { return s.WilliamsRPrev }},
	{"Bull_Power_Prev", func(s *model.Snapshot) null.Float { return s.BullPowerPrev }},
	{"Bear_Power_Prev", func(s *model.Snapshot) null.Float { return s.BearPowerPrev }},
	{"EMA_13_Prev", func(s *model.Snapshot) null.Float { return s.EMA13Prev }},
	{"AO_Prev", func(s *model.Snapshot) null.Float { return s.AOPrev }},
}

// CSVHeader returns the column names written by CSV
func CSVHeader() []string {
	h := []string{"Date", "Sector", "Ticker", "Exchange", "Price", "% Change"}
	for _, c := range indicatorColumns {
		h = append(h, c.name)
	}
	for k := signal.Kind(0); k < signal.NumKinds; k++ {
		h = append(h, k.String()+"_Signal")
	}
	return append(h,
		"Osc_Buy", "Osc_Sell", "MA_Buy", "MA_Sell",
		"Rating_1_Current", "Rating_1_Prev1", "Rating_1_Prev2",
		"Rating_2_Current", "Rating_2_Prev1", "Rating_2_Prev2",
		"MA50_GT_MA200",
		"Overall_Signal", "Buy_Count", "Sell_Count", "Neutral_Count", "Buy_Percentage", "Sell_Percentage",
		"Error",
	)
}

// CSV writes the full record export, one row per record including
// failed ones.
func CSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for i := range records {
		if err := cw.Write(csvRow(&records[i])); err != nil {
			return fmt.Errorf("writing csv row %s: %w", records[i].Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(r *model.Record) []string {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format("2006-01-02")
	}
	row := []string{date, r.Sector, r.Ticker, r.Exchange, raw(r.Price), raw(r.Change)}

	for _, c := range indicatorColumns {
		row = append(row, raw(c.get(&r.Snapshot)))
	}

	set := signal.FromVerdicts(r.Signals)
	for k := signal.Kind(0); k < signal.NumKinds; k++ {
		v := ""
		if !r.Failed() {
			v = set.Get(k).String()
		}
		row = append(row, v)
	}

	ints := func(vs ...int) []string {
		out := make([]string, len(vs))
		for i, v := range vs {
			out[i] = fmt.Sprint(v)
		}
		return out
	}
	row = append(row, ints(r.Counts.OscBuy, r.Counts.OscSell, r.Counts.MABuy, r.Counts.MASell)...)
	row = append(row,
		rawInt(r.Rating1), rawInt(r.Rating1Prev1), rawInt(r.Rating1Prev2),
		rawInt(r.Rating2), rawInt(r.Rating2Prev1), rawInt(r.Rating2Prev2),
		fmt.Sprint(r.MA50AboveMA200),
	)

	if r.Failed() {
		row = append(row, "", "", "", "", "", "")
	} else {
		sum := signal.Summarize(set)
		row = append(row,
			sum.Overall.String(),
			fmt.Sprint(sum.BuyCount), fmt.Sprint(sum.SellCount), fmt.Sprint(sum.NeutralCount),
			fmt.Sprint(sum.BuyPercent), fmt.Sprint(sum.SellPercent),
		)
	}
	return append(row, r.Error)
}

func raw(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprint(v.Float64)
}

func rawInt(v null.Int) string {
	if !v.Valid {
		return ""
	}
	return fmt.Sprint(v.Int64)
}
