package indicator

// Column identifies one computed indicator series in a Frame
type Column int

const (
	SMA5 Column = iota
	SMA10
	SMA20
	SMA30
	SMA50
	SMA100
	SMA200
	EMA10
	EMA13
	EMA20
	EMA30
	EMA50
	EMA100
	EMA200
	VWMA20
	HullMA9
	IchimokuConversion
	IchimokuBase
	IchimokuSpanA
	IchimokuSpanB
	RSI14
	StochK
	StochD
	CCI20
	ADX14
	DMIPlus
	DMIMinus
	AO
	Momentum10
	MACD
	MACDSignal
	StochRSIK
	StochRSID
	WilliamsR
	UO
	BullPower
	BearPower
	CloseVsMA5
	CloseVsMA10
	CloseVsMA20
	CloseVsMA50
	CloseVsMA200
	StrengthST
	StrengthLT
	RSIPrev
	CCIPrev
	ADXPrev
	MomentumPrev
	WilliamsRPrev
	BullPowerPrev
	BearPowerPrev
	EMA13Prev
	AOPrev

	numColumns
)

var columnNames = [numColumns]string{
	SMA5:               "SMA_5",
	SMA10:              "SMA_10",
	SMA20:              "SMA_20",
	SMA30:              "SMA_30",
	SMA50:              "SMA_50",
	SMA100:             "SMA_100",
	SMA200:             "SMA_200",
	EMA10:              "EMA_10",
	EMA13:              "EMA_13",
	EMA20:              "EMA_20",
	EMA30:              "EMA_30",
	EMA50:              "EMA_50",
	EMA100:             "EMA_100",
	EMA200:             "EMA_200",
	VWMA20:             "VWMA_20",
	HullMA9:            "Hull_MA_9",
	IchimokuConversion: "Ichimoku_Conversion",
	IchimokuBase:       "Ichimoku_Base",
	IchimokuSpanA:      "Ichimoku_A",
	IchimokuSpanB:      "Ichimoku_B",
	RSI14:              "RSI_14",
	StochK:             "Stoch_K",
	StochD:             "Stoch_D",
	CCI20:              "CCI_20",
	ADX14:              "ADX_14",
	DMIPlus:            "DMI_Positive",
	DMIMinus:           "DMI_Negative",
	AO:                 "AO",
	Momentum10:         "Momentum_10",
	MACD:               "MACD",
	MACDSignal:         "MACD_Signal",
	StochRSIK:          "StochRSI_K",
	StochRSID:          "StochRSI_D",
	WilliamsR:          "Williams_R",
	UO:                 "UO",
	BullPower:          "Bull_Power",
	BearPower:          "Bear_Power",
	CloseVsMA5:         "Close_vs_MA5",
	CloseVsMA10:        "Close_vs_MA10",
	CloseVsMA20:        "Close_vs_MA20",
	CloseVsMA50:        "Close_vs_MA50",
	CloseVsMA200:       "Close_vs_MA200",
	StrengthST:         "STRENGTH_ST",
	StrengthLT:         "STRENGTH_LT",
	RSIPrev:            "RSI_Prev",
	CCIPrev:            "CCI_Prev",
	ADXPrev:            "ADX_Prev",
	MomentumPrev:       "Momentum_Prev",
	WilliamsRPrev:      "Williams_R_Prev",
	BullPowerPrev:      "Bull_Power_Prev",
	BearPowerPrev:      "Bear_Power_Prev",
	EMA13Prev:          "EMA_13_Prev",
	AOPrev:             "AO_Prev",
}

func (c Column) String() string {
	if c < 0 || c >= numColumns {
		return "unknown"
	}
	return columnNames[c]
}

// Columns returns every computed column in display order
func Columns() []Column {
	cols := make([]Column, numColumns)
	for i := range cols {
		cols[i] = Column(i)
	}
	return cols
}

// lagged maps each one-bar-lagged column to its source
var lagged = map[Column]Column{
	RSIPrev:       RSI14,
	CCIPrev:       CCI20,
	ADXPrev:       ADX14,
	MomentumPrev:  Momentum10,
	WilliamsRPrev: WilliamsR,
	BullPowerPrev: BullPower,
	BearPowerPrev: BearPower,
	EMA13Prev:     EMA13,
	AOPrev:        AO,
}
