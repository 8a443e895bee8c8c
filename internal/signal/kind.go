// Package signal turns indicator snapshots into Buy/Sell/Neutral verdicts
// and aggregates them into ratings.
package signal

import "techtrack/pkg/model"

// Family groups signal kinds for counting
type Family int8

const (
	NoFamily Family = iota
	Oscillator
	MovingAverage
)

func (f Family) String() string {
	switch f {
	case Oscillator:
		return "oscillator"
	case MovingAverage:
		return "moving_average"
	default:
		return "none"
	}
}

// Kind is one of the fixed signals evaluated per snapshot
type Kind int

const (
	MA10 Kind = iota
	MA20
	MA30
	MA50
	MA100
	MA200
	EMA10
	EMA20
	EMA30
	EMA50
	EMA100
	EMA200
	VWMA
	HullMA
	Ichimoku

	RSI
	Stochastic
	CCI
	ADX
	AO
	Momentum
	MACD
	StochRSI
	WilliamsR
	BBP
	UO

	NumKinds
)

var kinds = [NumKinds]struct {
	name   string
	family Family
}{
	MA10:     {"MA_10", MovingAverage},
	MA20:     {"MA_20", MovingAverage},
	MA30:     {"MA_30", MovingAverage},
	MA50:     {"MA_50", MovingAverage},
	MA100:    {"MA_100", MovingAverage},
	MA200:    {"MA_200", MovingAverage},
	EMA10:    {"EMA_10", MovingAverage},
	EMA20:    {"EMA_20", MovingAverage},
	EMA30:    {"EMA_30", MovingAverage},
	EMA50:    {"EMA_50", MovingAverage},
	EMA100:   {"EMA_100", MovingAverage},
	EMA200:   {"EMA_200", MovingAverage},
	VWMA:     {"VWMA", MovingAverage},
	HullMA:   {"Hull_MA", MovingAverage},
	Ichimoku: {"Ichimoku", MovingAverage},

	RSI:        {"RSI", Oscillator},
	Stochastic: {"Stochastic", Oscillator},
	CCI:        {"CCI", Oscillator},
	ADX:        {"ADX", Oscillator},
	AO:         {"AO", Oscillator},
	Momentum:   {"Momentum", Oscillator},
	MACD:       {"MACD", Oscillator},
	StochRSI:   {"StochRSI", Oscillator},
	WilliamsR:  {"Williams_R", Oscillator},
	BBP:        {"BBP", Oscillator},
	UO:         {"UO", Oscillator},
}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return "unknown"
	}
	return kinds[k].name
}

// Family returns the counting group of k
func (k Kind) Family() Family {
	if k < 0 || k >= NumKinds {
		return NoFamily
	}
	return kinds[k].family
}

// Lookup resolves a signal name to its kind
func Lookup(name string) (Kind, bool) {
	for k := Kind(0); k < NumKinds; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return 0, false
}

// Set holds one verdict per kind. The zero Set is all Neutral.
type Set [NumKinds]model.Verdict

// Get returns the verdict for k
func (s Set) Get(k Kind) model.Verdict {
	if k < 0 || k >= NumKinds {
		return model.Neutral
	}
	return s[k]
}

// Verdicts flattens the set into named entries in kind order
func (s Set) Verdicts() []model.SignalVerdict {
	out := make([]model.SignalVerdict, 0, NumKinds)
	for k := Kind(0); k < NumKinds; k++ {
		out = append(out, model.SignalVerdict{
			Name:    k.String(),
			Family:  k.Family().String(),
			Verdict: s[k],
		})
	}
	return out
}

// FromVerdicts rebuilds a Set from named entries; unknown names are ignored
func FromVerdicts(vs []model.SignalVerdict) Set {
	var s Set
	for _, v := range vs {
		if k, ok := Lookup(v.Name); ok {
			s[k] = v.Verdict
		}
	}
	return s
}
